package pixel

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the sample distribution of a buffer.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Stats computes summary statistics over all samples in the buffer.
func (b *Buffer) Stats() Stats {
	if len(b.data) == 0 {
		return Stats{}
	}
	values := make([]float64, len(b.data))
	for i, v := range b.data {
		values[i] = float64(v)
	}
	mean, std := stat.MeanStdDev(values, nil)
	return Stats{
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   mean,
		StdDev: std,
	}
}
