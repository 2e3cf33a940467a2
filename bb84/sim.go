package bb84

import (
	"fmt"
	"math"

	"github.com/qubitsim/bb84/bb84/bitarray"
	"github.com/qubitsim/bb84/bb84/photon"
)

// Run performs one full exchange: draw random bits and bases, transmit the
// encoded carriers across a fresh simulated channel (with the eavesdropper
// spliced in when configured), measure, sift, and estimate the error rate.
func (s *Simulation) Run() (Result, error) {
	aliceBits := bitarray.Random(s.pulses, s.rand)
	aliceBases := bitarray.Random(s.pulses, s.rand)
	bobBases := bitarray.Random(s.pulses, s.rand)

	sender, receiver := photon.NewSimulatedChannel(1, s.rand)
	var eve *photon.Eavesdropper
	if s.eavesdrop {
		eve = photon.NewEavesdropper(s.eveRand)
		receiver.Wiretap(eve)
	}

	if err := sender.Send(aliceBits, aliceBases); err != nil {
		return Result{}, fmt.Errorf("sending qubits: %w", err)
	}
	bobBits, err := receiver.Receive(bobBases)
	if err != nil {
		return Result{}, fmt.Errorf("receiving qubits: %w", err)
	}

	sifted, err := Sift(aliceBits, aliceBases, bobBits, bobBases)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		AliceBits:  aliceBits,
		AliceBases: aliceBases,
		BobBits:    bobBits,
		BobBases:   bobBases,
		Sifted:     sifted,
		Report:     Estimate(sifted, s.threshold),
	}
	if eve != nil {
		res.EveBases = eve.Bases()
		res.EveBits = eve.Bits()
	}
	return res, nil
}

// Sift retains the positions where both parties chose the same basis. All
// four sequences must have equal lengths. The filter is pure and
// order-preserving.
func Sift(aliceBits, aliceBases, bobBits, bobBases bitarray.Dense) (SiftedPair, error) {
	n := aliceBits.Size()
	if aliceBases.Size() != n || bobBits.Size() != n || bobBases.Size() != n {
		return SiftedPair{}, fmt.Errorf("%w: sifting sequences of lengths (%d, %d, %d, %d)",
			ErrLengthMismatch, n, aliceBases.Size(), bobBits.Size(), bobBases.Size())
	}
	mask := aliceBases.XNor(bobBases)
	return SiftedPair{
		Alice: aliceBits.Select(mask),
		Bob:   bobBits.Select(mask),
	}, nil
}

// Estimate compares a sifted pair bit by bit and applies the threshold
// decision. An empty pair yields an undefined rate and no detection, which
// callers must treat as insufficient evidence rather than a clean channel.
func Estimate(pair SiftedPair, threshold float64) ErrorReport {
	r := ErrorReport{
		Mismatches: pair.Alice.XOr(pair.Bob).CountOnes(),
		Compared:   pair.Alice.Size(),
		Rate:       math.NaN(),
	}
	if r.Compared == 0 {
		return r
	}
	r.Rate = float64(r.Mismatches) / float64(r.Compared)
	r.Detected = r.Rate > threshold
	return r
}
