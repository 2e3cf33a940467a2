package photon

import (
	"math/rand"

	"github.com/qubitsim/bb84/bb84/bitarray"
)

// An Eavesdropper is an intercept-and-resend adversary. For every carrier in
// a tapped pulse she draws her own uniformly random basis, measures the
// carrier in it, and forwards a fresh carrier re-encoding her outcome in her
// basis. She never learns the sender's basis, so half of her measurements land
// in the wrong frame and the carriers she forwards silently encode noise.
//
// An Eavesdropper keeps a transcript of her choices and outcomes so that a
// simulation can report what she learned.
type Eavesdropper struct {
	rand *rand.Rand

	bases bitarray.Dense
	bits  bitarray.Dense
}

// NewEavesdropper returns an Eavesdropper drawing basis choices and crossed
// measurements from rng.
func NewEavesdropper(rng *rand.Rand) *Eavesdropper {
	return &Eavesdropper{rand: rng}
}

// Intercept implements the Tap interface. It measures and re-encodes every
// carrier in the pulse.
func (e *Eavesdropper) Intercept(pulse []State) []State {
	out := make([]State, len(pulse))
	for i, s := range pulse {
		basis := Rectilinear
		if e.rand.Intn(2) == 1 {
			basis = Diagonal
		}
		bit := s.Measure(basis, e.rand)
		e.bases.AppendBit(basis == Diagonal)
		e.bits.AppendBit(bit)
		out[i] = Encode(bit, basis)
	}
	return out
}

// Bases returns the bases used for every carrier intercepted so far.
func (e *Eavesdropper) Bases() bitarray.Dense {
	return e.bases
}

// Bits returns the outcome of every measurement made so far, aligned with
// Bases.
func (e *Eavesdropper) Bits() bitarray.Dense {
	return e.bits
}
