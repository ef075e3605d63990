package analytics

// Trend smoothing parameters.
const (
	DefaultWindow     = 4
	DefaultMinPeriods = 1
)

// Interpolate fills interior gaps linearly between the nearest observed
// points.  Leading gaps stay missing; trailing gaps carry the last observation
// forward.
//
//	[_, 3, _, 5, _] -> [_, 3, 4, 5, 5]
func Interpolate(s Series) Series {
	out := make(Series, len(s))
	copy(out, s)

	prev := -1
	for i, x := range s {
		if !x.ok {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			lo, hi := s[prev].v, x.v
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				out[j] = Num(lo + (hi-lo)*float64(j-prev)/span)
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < len(out); j++ {
			out[j] = s[prev]
		}
	}
	return out
}

// MovingAverage computes a trailing mean over the defined points among the
// last window positions.  A position is missing only when fewer than
// minPeriods points are defined in its window.
//
//	MovingAverage([3, 4, 5, 5], 4, 1) -> [3, 3.5, 4, 4.25]
func MovingAverage(s Series, window, minPeriods int) Series {
	if window < 1 {
		window = 1
	}
	if minPeriods < 1 {
		minPeriods = 1
	}
	out := make(Series, len(s))
	for i := range s {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		var sum float64
		var n int
		for _, x := range s[lo : i+1] {
			if x.ok {
				sum += x.v
				n++
			}
		}
		if n >= minPeriods {
			out[i] = Num(sum / float64(n))
		}
	}
	return out
}

// Smooth applies Interpolate then MovingAverage with the default window.
func Smooth(s Series) Series {
	return MovingAverage(Interpolate(s), DefaultWindow, DefaultMinPeriods)
}

//Personal.AI order the ending
