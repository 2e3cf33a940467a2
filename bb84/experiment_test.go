package bb84

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestRunTrialsCleanChannel(t *testing.T) {
	s, err := RunTrials(SimOpts{
		Pulses: 2000,
		Rand:   rand.New(rand.NewSource(31)),
	}, 8)
	if err != nil {
		t.Fatalf("running trials: %v", err)
	}
	if s.Trials != 8 || s.Skipped != 0 {
		t.Errorf("got %d trials with %d skipped, want 8 and 0", s.Trials, s.Skipped)
	}
	if s.Detections != 0 || s.DetectionRate() != 0 {
		t.Errorf("clean channel detected in %d of %d trials", s.Detections, s.Trials)
	}
	if s.MeanQBER != 0 {
		t.Errorf("clean channel mean QBER %v, want 0", s.MeanQBER)
	}
	if s.MeanSiftRatio < 0.45 || s.MeanSiftRatio > 0.55 {
		t.Errorf("mean sift ratio %v, want roughly half", s.MeanSiftRatio)
	}
}

func TestRunTrialsInterceptedChannel(t *testing.T) {
	s, err := RunTrials(SimOpts{
		Pulses:    2000,
		Eavesdrop: true,
		Rand:      rand.New(rand.NewSource(31)),
	}, 8)
	if err != nil {
		t.Fatalf("running trials: %v", err)
	}
	if s.Detections != s.Trials {
		t.Errorf("interception detected in only %d of %d trials", s.Detections, s.Trials)
	}
	if s.MeanQBER < 0.20 || s.MeanQBER > 0.30 {
		t.Errorf("mean QBER %v, want about 0.25", s.MeanQBER)
	}
	if math.IsNaN(s.StdDevQBER) {
		t.Error("rate deviation undefined across 8 defined trials")
	}
	if s.MeanSiftRatio < 0.45 || s.MeanSiftRatio > 0.55 {
		t.Errorf("mean sift ratio %v; interception must not bias sifting", s.MeanSiftRatio)
	}
}

func TestRunTrialsZeroPulses(t *testing.T) {
	s, err := RunTrials(SimOpts{Rand: rand.New(rand.NewSource(9))}, 3)
	if err != nil {
		t.Fatalf("running trials: %v", err)
	}
	if s.Skipped != 3 {
		t.Errorf("got %d skipped, want all 3", s.Skipped)
	}
	if !math.IsNaN(s.MeanQBER) {
		t.Errorf("mean QBER %v over zero defined rates, want NaN", s.MeanQBER)
	}
	if s.Detections != 0 {
		t.Errorf("empty keys produced %d detections", s.Detections)
	}
}

func TestRunTrialsValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := RunTrials(SimOpts{Pulses: 10, Rand: rng}, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("got %v for zero trials, want ErrInvalidParameter", err)
	}
	if _, err := RunTrials(SimOpts{Pulses: 10}, 5); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("got %v for missing rand, want ErrInvalidParameter", err)
	}
	if _, err := RunTrials(SimOpts{Pulses: -3, Rand: rng}, 5); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("got %v for negative pulses, want ErrInvalidParameter", err)
	}
}

func TestRunTrialsReproducible(t *testing.T) {
	run := func() Summary {
		s, err := RunTrials(SimOpts{
			Pulses:    500,
			Eavesdrop: true,
			Rand:      rand.New(rand.NewSource(123)),
		}, 4)
		if err != nil {
			t.Fatalf("running trials: %v", err)
		}
		return s
	}
	if a, b := run(), run(); a != b {
		t.Errorf("fixed-seed summaries disagree: %+v != %+v", a, b)
	}
}
