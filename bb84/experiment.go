package bb84

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// A Summary aggregates the outcomes of repeated independent runs of one
// parameterization. Runs that sifted down to an empty key have no error rate
// and are excluded from the rate statistics.
type Summary struct {
	Trials     int
	Detections int
	// Skipped counts runs whose sifted key was empty.
	Skipped int

	// MeanQBER and StdDevQBER summarize the observed error rates. NaN when
	// every run was skipped (or, for the deviation, when only one rate was
	// observed).
	MeanQBER   float64
	StdDevQBER float64

	// MeanSiftRatio is the mean fraction of carriers surviving sifting,
	// expected to hover around one half. NaN for zero-pulse runs.
	MeanSiftRatio float64
}

// DetectionRate is the fraction of trials flagged as intercepted.
func (s Summary) DetectionRate() float64 {
	return float64(s.Detections) / float64(s.Trials)
}

// RunTrials executes trials independent simulations of opts and summarizes
// them. Each trial draws its own random source from opts.Rand so that no
// state is shared across runs.
func RunTrials(opts SimOpts, trials int) (Summary, error) {
	if trials <= 0 {
		return Summary{}, fmt.Errorf("%w: %d trials", ErrInvalidParameter, trials)
	}
	if opts.Rand == nil {
		return Summary{}, fmt.Errorf("%w: must provide Rand", ErrInvalidParameter)
	}
	master := opts.Rand

	var rates, ratios []float64
	s := Summary{Trials: trials}
	for i := 0; i < trials; i++ {
		o := opts
		o.Rand = rand.New(rand.NewSource(master.Int63()))
		o.EveRand = nil // derived from the per-trial source
		sim, err := NewSimulation(o)
		if err != nil {
			return Summary{}, err
		}
		res, err := sim.Run()
		if err != nil {
			return Summary{}, fmt.Errorf("trial %d: %w", i, err)
		}
		if res.Report.Detected {
			s.Detections++
		}
		if !res.Report.Defined() {
			s.Skipped++
		} else {
			rates = append(rates, res.Report.Rate)
		}
		if opts.Pulses > 0 {
			ratios = append(ratios, float64(res.Report.Compared)/float64(opts.Pulses))
		}
	}

	s.MeanQBER = stat.Mean(rates, nil)
	s.StdDevQBER = stat.StdDev(rates, nil)
	s.MeanSiftRatio = stat.Mean(ratios, nil)
	return s, nil
}
