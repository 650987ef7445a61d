package petals

import "gonum.org/v1/gonum/stat"

// Stats summarizes the motion of the pool for overlays and run summaries.
type Stats struct {
	Count int

	MeanSpeed float64 // mean leftward speed, -VX
	StdSpeed  float64
	MeanDrift float64 // mean VY, positive is downward
	StdDrift  float64

	MeanAge float64
}

// Stats computes pool statistics for the current frame.
func (f *Field) Stats() Stats {
	n := len(f.particles)
	if n == 0 {
		return Stats{}
	}

	speed := make([]float64, n)
	drift := make([]float64, n)
	age := make([]float64, n)
	for i := range f.particles {
		p := &f.particles[i]
		speed[i] = -p.VX
		drift[i] = p.VY
		age[i] = p.Age
	}

	s := Stats{Count: n}
	s.MeanSpeed, s.StdSpeed = stat.MeanStdDev(speed, nil)
	s.MeanDrift, s.StdDrift = stat.MeanStdDev(drift, nil)
	s.MeanAge = stat.Mean(age, nil)
	if n == 1 {
		// sample stddev is undefined for a single petal
		s.StdSpeed, s.StdDrift = 0, 0
	}
	return s
}
