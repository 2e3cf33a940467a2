// Package photon provides utilities for handling simulated photon-encoded
// qubits: preparing carrier states, measuring them, and tapping them in
// transit.
package photon

import (
	"math/rand"

	"github.com/qubitsim/bb84/bb84/bitarray"
)

// A Basis is the polarization frame a carrier is prepared or measured in.
type Basis int

const (
	// Rectilinear is the Z basis. Packed basis sequences encode it as 0.
	Rectilinear Basis = iota
	// Diagonal is the X basis. Packed basis sequences encode it as 1.
	Diagonal
)

// String implements fmt.Stringer.
func (b Basis) String() string {
	if b == Diagonal {
		return "X"
	}
	return "Z"
}

// BasisAt interprets position i of a packed basis sequence.
func BasisAt(bases bitarray.Dense, i int) Basis {
	if bases.Get(i) {
		return Diagonal
	}
	return Rectilinear
}

// A State is a single carrier prepared with a (bit, basis) pair. It is opaque
// to everyone but the preparer: the only way to get information out of it is
// Measure, and a measurement in the wrong basis yields noise.
type State struct {
	bit   bool
	basis Basis
}

// Encode prepares a carrier state for the given logical bit in the given
// basis. Encoding is deterministic; all randomness in the channel lives in
// measurement.
func Encode(bit bool, basis Basis) State {
	return State{bit: bit, basis: basis}
}

// Measure collapses s in the given basis. Measuring in the preparation basis
// yields the prepared bit with certainty; measuring in the other basis yields
// an unbiased coin flip from rng, independent of the prepared bit.
//
// A State is logically consumed by measurement. Measuring the same State
// twice is a caller bug: the second result would not model any physical
// process.
func (s State) Measure(basis Basis, rng *rand.Rand) bool {
	if basis == s.basis {
		return s.bit
	}
	return rng.Intn(2) == 1
}

// A Sender pushes pulses of encoded carrier states onto a quantum link.
type Sender interface {
	// Send encodes one carrier per position of bits/bases and transmits the
	// resulting pulse. The two sequences must have equal lengths.
	Send(bits, bases bitarray.Dense) error
}

// A Receiver pulls pulses off a quantum link and measures them.
type Receiver interface {
	// Receive measures the next pulse, carrier i in basis i, and returns the
	// resulting bit sequence. The basis sequence must be as long as the pulse.
	Receive(bases bitarray.Dense) (bitarray.Dense, error)
}

// A Tap transforms a pulse in transit. Taps model adversaries and channel
// imperfections sitting between the sender's encoder and the receiver's
// measurement.
type Tap interface {
	Intercept(pulse []State) []State
}
