// Package reduce maps reducer names to step functions and applies them
// to value streams, producing the running accumulator series and the
// final value.
package reduce

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"sort"

	"github.com/fold-data/running.report/internal/fold"
)

// ErrNameNotFound is returned when a reducer name has no registration.
var ErrNameNotFound = errors.New("name not found")

// ErrSeedNotSupported is returned when an explicit seed is supplied for
// a reducer whose accumulator is not a plain running value (mean,
// variance).
var ErrSeedNotSupported = errors.New("reducer does not accept a seed")

// Reducer names accepted by Lookup and Apply.
const (
	Sum      = "sum"
	Product  = "product"
	Count    = "count"
	Min      = "min"
	Max      = "max"
	First    = "first"
	Last     = "last"
	Mean     = "mean"
	Variance = "variance"
)

// Reducer describes a named accumulation.
type Reducer struct {
	Name string

	// Seeded reports whether the reducer carries an intrinsic identity
	// seed. Unseeded reducers take their initial accumulator from the
	// first element, and exhaust on empty input.
	Seeded bool

	// Seed is the intrinsic seed when Seeded is true.
	Seed float64

	// plain is the binary step for running-value reducers. Nil for
	// reducers with composite streaming state (mean, variance).
	plain fold.Step[float64, float64]

	// stream builds the composite-state scan for non-plain reducers.
	stream func(iter.Seq[float64]) iter.Seq[float64]
}

var registry = map[string]Reducer{
	Sum:     {Name: Sum, Seeded: true, Seed: 0, plain: func(acc, v float64) float64 { return acc + v }},
	Product: {Name: Product, Seeded: true, Seed: 1, plain: func(acc, v float64) float64 { return acc * v }},
	Count:   {Name: Count, Seeded: true, Seed: 0, plain: func(acc, _ float64) float64 { return acc + 1 }},
	Min:     {Name: Min, plain: math.Min},
	Max:     {Name: Max, plain: math.Max},
	First:   {Name: First, plain: func(acc, _ float64) float64 { return acc }},
	Last:    {Name: Last, plain: func(_, v float64) float64 { return v }},
	Mean:    {Name: Mean, stream: meanScan},
	Variance: {
		Name:   Variance,
		stream: varianceScan,
	},
}

// Names returns the registered reducer names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a reducer by name.
func Lookup(name string) (Reducer, error) {
	r, ok := registry[name]
	if !ok {
		return Reducer{}, fmt.Errorf("reducer %q: %w", name, ErrNameNotFound)
	}
	return r, nil
}

// Point is one step of a running accumulation: the input element at
// Index and the accumulator value after folding it in.
type Point struct {
	Index int     `json:"index"`
	Input float64 `json:"input"`
	Acc   float64 `json:"acc"`
}

// Outcome is the result of applying a reducer to a stream.
type Outcome struct {
	// Points holds one entry per input element, in input order.
	Points []Point

	seeded bool
	seed   float64
}

// Series returns just the accumulator values, in step order.
func (o Outcome) Series() []float64 {
	out := make([]float64, len(o.Points))
	for i, p := range o.Points {
		out[i] = p.Acc
	}
	return out
}

// Last returns the final accumulator value. On an empty stream it
// returns the seed when one was in effect, and fold.ErrExhausted
// otherwise.
func (o Outcome) Last() (float64, error) {
	if len(o.Points) == 0 {
		if o.seeded {
			return o.seed, nil
		}
		return 0, fold.ErrExhausted
	}
	return o.Points[len(o.Points)-1].Acc, nil
}

// Seeded reports whether a seed was in effect, and its value.
func (o Outcome) Seeded() (float64, bool) {
	return o.seed, o.seeded
}

// Apply runs the named reducer over values. An explicit seed, when
// non-nil, overrides the reducer's intrinsic seed; it is rejected for
// composite-state reducers.
func Apply(name string, values iter.Seq[float64], seed *float64) (Outcome, error) {
	r, err := Lookup(name)
	if err != nil {
		return Outcome{}, err
	}

	if r.stream != nil {
		if seed != nil {
			return Outcome{}, fmt.Errorf("reducer %q: %w", name, ErrSeedNotSupported)
		}
		return collect(values, r.stream, false, 0), nil
	}

	switch {
	case seed != nil:
		return collect(values, func(in iter.Seq[float64]) iter.Seq[float64] {
			return fold.Scan(in, r.plain, *seed)
		}, true, *seed), nil
	case r.Seeded:
		return collect(values, func(in iter.Seq[float64]) iter.Seq[float64] {
			return fold.Scan(in, r.plain, r.Seed)
		}, true, r.Seed), nil
	default:
		return collect(values, func(in iter.Seq[float64]) iter.Seq[float64] {
			return fold.Scan1(in, r.plain)
		}, false, 0), nil
	}
}

// collect materialises the scan, pairing each accumulator value with
// the input element that produced it.
func collect(values iter.Seq[float64], scan func(iter.Seq[float64]) iter.Seq[float64], seeded bool, seed float64) Outcome {
	var inputs []float64
	tapped := func(yield func(float64) bool) {
		for v := range values {
			inputs = append(inputs, v)
			if !yield(v) {
				return
			}
		}
	}

	out := Outcome{seeded: seeded, seed: seed}
	for i, acc := range fold.Enumerate(scan(tapped)) {
		out.Points = append(out.Points, Point{Index: i, Input: inputs[i], Acc: acc})
	}
	return out
}

// meanScan emits the running arithmetic mean.
func meanScan(values iter.Seq[float64]) iter.Seq[float64] {
	type state struct {
		count int
		mean  float64
	}
	scanned := fold.Scan(values, func(s state, v float64) state {
		s.count++
		s.mean += (v - s.mean) / float64(s.count)
		return s
	}, state{})
	return fold.Select(scanned, func(s state) float64 { return s.mean })
}

// varianceScan emits the running sample variance (Welford). The first
// step reports 0: a single observation has no spread.
func varianceScan(values iter.Seq[float64]) iter.Seq[float64] {
	type state struct {
		count int
		mean  float64
		m2    float64
	}
	scanned := fold.Scan(values, func(s state, v float64) state {
		s.count++
		delta := v - s.mean
		s.mean += delta / float64(s.count)
		s.m2 += delta * (v - s.mean)
		return s
	}, state{})
	return fold.Select(scanned, func(s state) float64 {
		if s.count < 2 {
			return 0
		}
		return s.m2 / float64(s.count-1)
	})
}
