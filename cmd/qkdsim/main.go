// qkdsim runs batches of simulated BB84 exchanges for each entry in the
// cartesian product of a collection of tuning parameters, e.g. pulse count and
// detection threshold, with and without an eavesdropper on the line, and
// outputs a CSV of detection statistics for each combination.
//
// Defaults may be supplied through QKDSIM_* environment variables and
// overridden by flags.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"text/template"

	"github.com/caarlos0/env/v11"
	"github.com/qubitsim/bb84/bb84"
	flag "github.com/spf13/pflag"
)

// envConfig carries flag defaults read from the environment.
type envConfig struct {
	Pulses     []int     `env:"QKDSIM_PULSES" envSeparator:"," envDefault:"2000"`
	Thresholds []float64 `env:"QKDSIM_THRESHOLDS" envSeparator:"," envDefault:"0.2"`
	Trials     int       `env:"QKDSIM_TRIALS" envDefault:"10"`
	Seed       int64     `env:"QKDSIM_SEED" envDefault:"42"`
}

var (
	pulses     *[]int
	thresholds *[]float64
	eve        *[]bool
	trials     *int
	seed       *int64
)

var columns = []string{"Pulses", "Threshold", "Eve", "Trials", "MeanSiftRatio",
	"MeanQBER", "StdDevQBER", "Detections", "Skipped"}

// An Experiment packages together the result of one parameterization for easy
// formatting.
type Experiment struct {
	Pulses    int
	Threshold float64
	Eve       bool
	Trials    int

	MeanSiftRatio float64
	MeanQBER      float64
	StdDevQBER    float64
	Detections    int
	Skipped       int
}

func main() {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Parsing environment: %v", err)
	}
	pulses = flag.IntSlice("pulses", cfg.Pulses, "The numbers of carriers to exchange per run.")
	thresholds = flag.Float64Slice("threshold", cfg.Thresholds, "The detection thresholds to test.")
	eve = flag.BoolSlice("eve", []bool{false, true}, "Whether an eavesdropper intercepts the line.")
	trials = flag.Int("trials", cfg.Trials, "Independent runs per parameterization.")
	seed = flag.Int64("seed", cfg.Seed, "Master seed; each parameterization reuses it for comparable rows.")
	flag.Parse()

	fmt.Println(header())
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	args := [][]interface{}{asAny(*pulses), asAny(*thresholds), asAny(*eve)}
	applyCartesian(func(vals []interface{}) {
		exp := &Experiment{
			Pulses:    vals[0].(int),
			Threshold: vals[1].(float64),
			Eve:       vals[2].(bool),
			Trials:    *trials,
		}
		if err := run(exp); err != nil {
			log.Printf("Running %+v: %v", exp, err)
			return
		}
		if err := tmpl.Execute(os.Stdout, exp); err != nil {
			log.Fatalf("BUG: could not fill in line template: %v", err)
		}
	}, args)
}

func run(exp *Experiment) error {
	s, err := bb84.RunTrials(bb84.SimOpts{
		Pulses:    exp.Pulses,
		Eavesdrop: exp.Eve,
		Threshold: exp.Threshold,
		Rand:      rand.New(rand.NewSource(*seed)),
	}, exp.Trials)
	if err != nil {
		return err
	}
	exp.MeanSiftRatio = s.MeanSiftRatio
	exp.MeanQBER = s.MeanQBER
	exp.StdDevQBER = s.StdDevQBER
	exp.Detections = s.Detections
	exp.Skipped = s.Skipped
	return nil
}

func header() string {
	return strings.Join(columns, ", ")
}

func lineTmpl() string {
	var els []string
	for _, c := range columns {
		els = append(els, "{{."+c+"}}")
	}
	return strings.Join(els, ", ") + "\n"
}

func asAny[T any](vals []T) []interface{} {
	r := make([]interface{}, 0, len(vals))
	for _, v := range vals {
		r = append(r, v)
	}
	return r
}

func applyCartesian(f func([]interface{}), args [][]interface{}) {
	for i := range args {
		if len(args[i]) == 1 {
			continue
		}
		l := make([][]interface{}, len(args))
		r := make([][]interface{}, len(args))
		copy(l, args)
		copy(r, args)
		l[i] = args[i][:1]
		r[i] = args[i][1:]
		applyCartesian(f, l)
		applyCartesian(f, r)
		return
	}
	x := make([]interface{}, 0, len(args))
	for _, a := range args {
		x = append(x, a[0])
	}
	f(x)
}
