package utils

import "math"

// Communicator is the only place where ranks synchronise. All methods are
// collective: every rank of the group must call them in the same order.
type Communicator interface {
	Rank() int
	NumProc() int
	AllReduceMax(val float64) float64
	AllReduceSum(val float64) float64
	// AllToAll sends send[r] to rank r and returns the blocks received, indexed by source rank
	AllToAll(send [][]complex128) (recv [][]complex128)
	Barrier()
}

// Sequential is the single rank communicator
type Sequential struct{}

func NewSequential() *Sequential { return &Sequential{} }

func (s *Sequential) Rank() int                        { return 0 }
func (s *Sequential) NumProc() int                     { return 1 }
func (s *Sequential) AllReduceMax(val float64) float64 { return val }
func (s *Sequential) AllReduceSum(val float64) float64 { return val }
func (s *Sequential) Barrier()                         {}
func (s *Sequential) AllToAll(send [][]complex128) (recv [][]complex128) {
	if len(send) != 1 {
		panic("sequential AllToAll needs exactly one block")
	}
	return send
}

// ThreadComm is one rank of a group of goroutines sharing mailboxes
type ThreadComm struct {
	rank   int
	values *MailBox[float64]
	blocks *MailBox[[]complex128]
}

// NewThreadGroup returns NP communicators, one per rank. Each must be driven
// by its own goroutine.
func NewThreadGroup(NP int) (comms []Communicator) {
	var (
		values = NewMailBox[float64](NP)
		blocks = NewMailBox[[]complex128](NP)
	)
	comms = make([]Communicator, NP)
	for np := 0; np < NP; np++ {
		comms[np] = &ThreadComm{
			rank:   np,
			values: values,
			blocks: blocks,
		}
	}
	return
}

func (tc *ThreadComm) Rank() int    { return tc.rank }
func (tc *ThreadComm) NumProc() int { return tc.values.NP }

func (tc *ThreadComm) AllReduceMax(val float64) (max float64) {
	max = math.Inf(-1)
	for _, v := range tc.values.Broadcast(tc.rank, val) {
		if v > max || math.IsNaN(v) {
			max = v
		}
		if math.IsNaN(max) {
			break
		}
	}
	return
}

// AllReduceSum adds in rank order so every rank gets a bitwise identical result
func (tc *ThreadComm) AllReduceSum(val float64) (sum float64) {
	for _, v := range tc.values.Broadcast(tc.rank, val) {
		sum += v
	}
	return
}

func (tc *ThreadComm) AllToAll(send [][]complex128) (recv [][]complex128) {
	return tc.blocks.Exchange(tc.rank, send)
}

func (tc *ThreadComm) Barrier() {
	tc.values.Broadcast(tc.rank, 0)
}
