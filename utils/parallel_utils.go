package utils

import "fmt"

// MailBox connects NP threads with one FIFO per (sender, receiver) pair. Every
// thread must take part in each Exchange, in the same order.
type MailBox[T any] struct {
	NP           int
	MessageChans [][]chan T // [sender][receiver]
}

func NewMailBox[T any](NP int) *MailBox[T] {
	mb := &MailBox[T]{
		NP:           NP,
		MessageChans: make([][]chan T, NP),
	}
	for n := 0; n < NP; n++ {
		mb.MessageChans[n] = make([]chan T, NP)
		for m := 0; m < NP; m++ {
			if m != n {
				mb.MessageChans[n][m] = make(chan T, 1)
			}
		}
	}
	return mb
}

// Exchange posts outbox[target] to every other thread and blocks until one
// message from every other thread has arrived. inbox[myThread] is outbox[myThread].
func (mb *MailBox[T]) Exchange(myThread int, outbox []T) (inbox []T) {
	if len(outbox) != mb.NP {
		panic(fmt.Sprintf("outbox has %d entries, need %d", len(outbox), mb.NP))
	}
	for target := 0; target < mb.NP; target++ {
		if target == myThread {
			continue
		}
		mb.MessageChans[myThread][target] <- outbox[target]
	}
	inbox = make([]T, mb.NP)
	inbox[myThread] = outbox[myThread]
	for source := 0; source < mb.NP; source++ {
		if source == myThread {
			continue
		}
		inbox[source] = <-mb.MessageChans[source][myThread]
	}
	return
}

// Broadcast is Exchange with the same message for every thread.
func (mb *MailBox[T]) Broadcast(myThread int, msg T) (inbox []T) {
	outbox := make([]T, mb.NP)
	for n := range outbox {
		outbox[n] = msg
	}
	return mb.Exchange(myThread, outbox)
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// GetBucket returns the partition holding index k, or -1 when k is out of range
func (pm *PartitionMap) GetBucket(k int) (bucketNum, min, max int) {
	if k < 0 || k >= pm.MaxIndex {
		return -1, 0, 0
	}
	// Initial guess, off by at most one
	bucketNum = int(float64(pm.ParallelDegree*k) / float64(pm.MaxIndex))
	for !(pm.Partitions[bucketNum][0] <= k && pm.Partitions[bucketNum][1] > k) {
		if pm.Partitions[bucketNum][0] > k {
			bucketNum--
		} else {
			bucketNum++
		}
	}
	min, max = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// Splits one dimension into ParallelDegree pieces with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}
