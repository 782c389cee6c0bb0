package state

import (
	"fmt"

	"github.com/notargets/gospectral/operators"
	"github.com/notargets/gospectral/utils"
)

/*
	State is a set of named fields held in physical and spectral space.

	The two representations are only synchronised by PhysFromSpect and
	SpectFromPhys, whoever mutates one side calls the matching refresh before
	handing the state to anybody else.
*/
type State struct {
	Keys  []string
	op    *operators.Operators
	phys  map[string][]float64
	spect map[string][]complex128
}

// Names a velocity component answers to
var aliases = map[string][]string{
	"ux": {"vx", "u"}, "vx": {"ux", "u"}, "u": {"ux", "vx"},
	"uy": {"vy"}, "vy": {"uy"},
	"uz": {"vz"}, "vz": {"uz"},
}

func NewState(op *operators.Operators, keys ...string) (s *State) {
	s = &State{
		Keys:  keys,
		op:    op,
		phys:  make(map[string][]float64, len(keys)),
		spect: make(map[string][]complex128, len(keys)),
	}
	for _, key := range keys {
		if _, present := s.phys[key]; present {
			panic(fmt.Sprintf("duplicate state key %q", key))
		}
		s.phys[key] = op.Tr.CreateArrayX()
		s.spect[key] = op.Tr.CreateArrayK()
	}
	return
}

func (s *State) Oper() *operators.Operators { return s.op }

func (s *State) Has(key string) bool {
	_, ok := s.phys[key]
	return ok
}

// CanThisKeyBeObtained reports the key under which a field is stored
func (s *State) CanThisKeyBeObtained(key string) (stored string, ok bool) {
	if s.Has(key) {
		return key, true
	}
	for _, alias := range aliases[key] {
		if s.Has(alias) {
			return alias, true
		}
	}
	return "", false
}

// Get returns the physical field, shared with the state
func (s *State) Get(key string) []float64 {
	stored, ok := s.CanThisKeyBeObtained(key)
	if !ok {
		panic(fmt.Sprintf("no field %q in state %v", key, s.Keys))
	}
	return s.phys[stored]
}

// GetFFT returns the spectral field, shared with the state
func (s *State) GetFFT(key string) []complex128 {
	stored, ok := s.CanThisKeyBeObtained(key)
	if !ok {
		panic(fmt.Sprintf("no field %q in state %v", key, s.Keys))
	}
	return s.spect[stored]
}

// SpectralFields lists the spectral fields in key order
func (s *State) SpectralFields() (fields [][]complex128) {
	fields = make([][]complex128, len(s.Keys))
	for i, key := range s.Keys {
		fields[i] = s.spect[key]
	}
	return
}

func (s *State) PhysFields() (fields [][]float64) {
	fields = make([][]float64, len(s.Keys))
	for i, key := range s.Keys {
		fields[i] = s.phys[key]
	}
	return
}

// SetSpectralFields copies fields, given in key order, into the spectral state
func (s *State) SetSpectralFields(fields [][]complex128) {
	if len(fields) != len(s.Keys) {
		panic(fmt.Sprintf("have %d spectral fields for %d keys", len(fields), len(s.Keys)))
	}
	for i, key := range s.Keys {
		if len(fields[i]) != len(s.spect[key]) {
			panic(fmt.Sprintf("spectral field %q has length %d, need %d", key, len(fields[i]), len(s.spect[key])))
		}
		copy(s.spect[key], fields[i])
	}
}

// PhysFromSpect recomputes every physical field from its spectral field
func (s *State) PhysFromSpect() {
	for _, key := range s.Keys {
		s.op.Tr.Inverse(s.phys[key], s.spect[key])
	}
}

// SpectFromPhys recomputes every spectral field from its physical field
func (s *State) SpectFromPhys() {
	for _, key := range s.Keys {
		s.op.Tr.Forward(s.spect[key], s.phys[key])
	}
}

// InitPhys sets the physical fields present in init, zeroes the others and
// synchronises the spectral side
func (s *State) InitPhys(init map[string][]float64) {
	for key := range init {
		if !s.Has(key) {
			panic(fmt.Sprintf("no field %q in state %v", key, s.Keys))
		}
	}
	for _, key := range s.Keys {
		f := s.phys[key]
		if val, ok := init[key]; ok {
			if len(val) != len(f) {
				panic(fmt.Sprintf("field %q has length %d, need %d", key, len(val), len(f)))
			}
			copy(f, val)
		} else {
			clear(f)
		}
	}
	s.SpectFromPhys()
}

// IsNonFinite is true on every rank when any rank holds a NaN or an Inf in spectral space
func (s *State) IsNonFinite() bool {
	var flag float64
	if utils.IsNonFinite(s.SpectralFields()) {
		flag = 1
	}
	return s.op.Comm().AllReduceMax(flag) > 0
}
