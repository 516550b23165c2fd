package analysis

import "math"

type Summary struct {
	Min, Max, Mean, RMS float64
	N                   int
}

func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	s := Summary{Min: data[0], Max: data[0], N: len(data)}
	sumSq := 0.0
	for _, v := range data {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		s.Mean += v
		sumSq += v * v
	}
	s.Mean /= float64(len(data))
	s.RMS = math.Sqrt(sumSq / float64(len(data)))
	return s
}
