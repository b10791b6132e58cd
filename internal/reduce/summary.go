package reduce

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for a completed run.
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Sum      float64 `json:"sum"`
}

// Summarize computes descriptive statistics over a finished value
// slice. A nil or empty slice yields a zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	variance := stat.Variance(values, nil)
	return Summary{
		Count:    len(values),
		Mean:     stat.Mean(values, nil),
		Variance: variance,
		StdDev:   stat.StdDev(values, nil),
		Min:      floats.Min(values),
		Max:      floats.Max(values),
		Sum:      floats.Sum(values),
	}
}
