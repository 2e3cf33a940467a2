// Package bb84 simulates single-pass BB84 quantum key negotiation between two
// parties and decides, from the sifted-key error rate, whether an
// intercept-and-resend eavesdropper was on the line.
package bb84

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/qubitsim/bb84/bb84/bitarray"
	"github.com/qubitsim/bb84/bb84/photon"
)

// DefaultThreshold is the error rate above which a run is flagged as
// intercepted. It sits between the no-eavesdropper expectation (0, plus
// sampling noise) and the full-interception expectation (0.25).
var DefaultThreshold = 0.2

var (
	// ErrInvalidParameter reports an option rejected before any simulation
	// runs.
	ErrInvalidParameter = errors.New("invalid simulation parameter")
	// ErrLengthMismatch reports index-aligned sequences of unequal lengths.
	ErrLengthMismatch = errors.New("sequence length mismatch")
)

// A SimOpts packages together the arguments necessary to construct a new
// Simulation.
type SimOpts struct {
	// Pulses is the number of carriers to exchange per run. Must be >= 0;
	// zero is a legal (if uninformative) run.
	Pulses int

	// Eavesdrop inserts an intercept-and-resend adversary between the
	// sender's encoder and the receiver's measurement. She intercepts every
	// carrier.
	Eavesdrop bool

	// Rand provides the randomness for bit/basis generation and for the
	// receiver's crossed-basis measurements. This may use pRNG so that runs
	// are reproducible under a fixed seed. Must be non-nil.
	Rand *rand.Rand

	// EveRand provides the eavesdropper's basis choices and measurement
	// randomness. Defaults to a source seeded from Rand.
	EveRand *rand.Rand

	// Threshold overrides the detection threshold. Must lie in [0, 1].
	// Defaults to DefaultThreshold.
	Threshold float64
}

// A Simulation runs independent single-pass BB84 exchanges. It holds
// configuration only; every run draws fresh sequences and a fresh channel.
type Simulation struct {
	pulses    int
	eavesdrop bool
	threshold float64
	rand      *rand.Rand
	eveRand   *rand.Rand
}

// NewSimulation returns a new Simulation, configured in accordance with opts,
// or an error if the options are nonsensical.
func NewSimulation(opts SimOpts) (*Simulation, error) {
	if opts.Pulses < 0 {
		return nil, fmt.Errorf("%w: %d pulses", ErrInvalidParameter, opts.Pulses)
	}
	if opts.Rand == nil {
		return nil, fmt.Errorf("%w: must provide Rand", ErrInvalidParameter)
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold %v outside [0, 1]", ErrInvalidParameter, opts.Threshold)
	}
	eveRand := opts.EveRand
	if eveRand == nil {
		eveRand = rand.New(rand.NewSource(opts.Rand.Int63()))
	}
	return &Simulation{
		pulses:    opts.Pulses,
		eavesdrop: opts.Eavesdrop,
		threshold: threshold,
		rand:      opts.Rand,
		eveRand:   eveRand,
	}, nil
}

// A SiftedPair holds the bits each party retained at positions where both
// chose the same measurement basis, in original carrier order. The two
// sequences always have equal lengths.
type SiftedPair struct {
	Alice bitarray.Dense
	Bob   bitarray.Dense
}

// An ErrorReport is the outcome of comparing a sifted key pair bit by bit.
type ErrorReport struct {
	// Mismatches is the number of positions where the retained bits differ.
	Mismatches int
	// Compared is the length of the sifted pair.
	Compared int
	// Rate is Mismatches/Compared. When Compared is zero the rate is
	// undefined and Rate is NaN; an empty key is not evidence of a clean
	// channel.
	Rate float64
	// Detected is whether Rate exceeded the detection threshold. Always
	// false when Rate is undefined.
	Detected bool
}

// Defined reports whether any bits were compared, i.e. whether Rate carries
// information.
func (r ErrorReport) Defined() bool {
	return r.Compared > 0
}

// A Result packages together everything a single run produces, including the
// full diagnostic sequences.
type Result struct {
	// Alice's prepared bits and bases, index-aligned per carrier.
	AliceBits  bitarray.Dense
	AliceBases bitarray.Dense

	// Bob's measurement bases and outcomes, index-aligned with Alice's.
	BobBits  bitarray.Dense
	BobBases bitarray.Dense

	// The eavesdropper's basis choices and measured bits. Empty when the run
	// had no eavesdropper.
	EveBases bitarray.Dense
	EveBits  bitarray.Dense

	Sifted SiftedPair
	Report ErrorReport
}

// interfaces are satisfied by the simulated channel the pipeline builds.
var (
	_ photon.Sender   = (*photon.SimulatedSender)(nil)
	_ photon.Receiver = (*photon.SimulatedReceiver)(nil)
	_ photon.Tap      = (*photon.Eavesdropper)(nil)
)
