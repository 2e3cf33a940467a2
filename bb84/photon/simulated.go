package photon

import (
	"fmt"
	"math/rand"

	"github.com/qubitsim/bb84/bb84/bitarray"
)

// NewSimulatedChannel creates a pair of (Sender, Receiver) structs simulating
// a quantum channel. It is expected that each call to Send() will be mirrored
// by a call to Receive(). Expect errors if that is not the case, and for calls
// to Send() to hang if more than bufSize of them are made before Receive().
//
// rng supplies the receiver's measurement randomness and must be non-nil.
func NewSimulatedChannel(bufSize int, rng *rand.Rand) (*SimulatedSender, *SimulatedReceiver) {
	pulses := make(chan []State, bufSize)
	ss := &SimulatedSender{pulses: pulses}
	sr := &SimulatedReceiver{pulses: pulses, rand: rng}
	return ss, sr
}

// A SimulatedSender implements Sender over an in-memory link.
type SimulatedSender struct {
	pulses chan<- []State
}

// A SimulatedReceiver implements Receiver over an in-memory link. Taps spliced
// in via Wiretap see each pulse after encoding and before measurement, in
// splice order.
type SimulatedReceiver struct {
	pulses <-chan []State
	rand   *rand.Rand
	taps   []Tap
}

// Send implements the Sender interface.
func (ss *SimulatedSender) Send(bits, bases bitarray.Dense) error {
	if bits.Size() != bases.Size() {
		return fmt.Errorf("bit and basis length must agree: %d != %d", bits.Size(), bases.Size())
	}
	pulse := make([]State, bits.Size())
	for i := range pulse {
		pulse[i] = Encode(bits.Get(i), BasisAt(bases, i))
	}
	ss.pulses <- pulse
	return nil
}

// Receive implements the Receiver interface.
func (sr *SimulatedReceiver) Receive(bases bitarray.Dense) (bitarray.Dense, error) {
	pulse := <-sr.pulses
	if bases.Size() != len(pulse) {
		return bitarray.Empty(), fmt.Errorf("pulse length must match receive basis length: %d != %d", len(pulse), bases.Size())
	}
	for _, t := range sr.taps {
		pulse = t.Intercept(pulse)
	}
	var bits bitarray.Dense
	for i, s := range pulse {
		bits.AppendBit(s.Measure(BasisAt(bases, i), sr.rand))
	}
	return bits, nil
}

// Wiretap splices t into the link. Every subsequent pulse passes through t
// before it reaches the measurement stage.
func (sr *SimulatedReceiver) Wiretap(t Tap) {
	sr.taps = append(sr.taps, t)
}
