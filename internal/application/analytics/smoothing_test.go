package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func series(vals ...interface{}) Series {
	out := make(Series, len(vals))
	for i, v := range vals {
		if f, ok := v.(float64); ok {
			out[i] = Num(f)
		}
	}
	return out
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name string
		in   Series
		want Series
	}{
		{"interior and trailing", series(3.0, nil, 5.0, nil), series(3.0, 4.0, 5.0, 5.0)},
		{"leading stays missing", series(nil, 3.0, nil, 5.0, nil), series(nil, 3.0, 4.0, 5.0, 5.0)},
		{"wide gap", series(1.0, nil, nil, 4.0), series(1.0, 2.0, 3.0, 4.0)},
		{"all missing", series(nil, nil), series(nil, nil)},
		{"empty", Series{}, Series{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.in))
		})
	}
}

func TestInterpolate_DoesNotMutateInput(t *testing.T) {
	in := series(3.0, nil, 5.0)
	Interpolate(in)
	assert.True(t, in[1].IsNA())
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage(series(3.0, 4.0, 5.0, 5.0), DefaultWindow, DefaultMinPeriods)
	assert.Equal(t, series(3.0, 3.5, 4.0, 4.25), got)

	got = MovingAverage(series(nil, 3.0, 4.0, nil), 4, 1)
	assert.Equal(t, series(nil, 3.0, 3.5, 3.5), got)

	got = MovingAverage(series(nil, 3.0, 4.0), 4, 2)
	assert.Equal(t, series(nil, nil, 3.5), got)
}

func TestMovingAverage_WindowSlides(t *testing.T) {
	got := MovingAverage(series(1.0, 1.0, 1.0, 1.0, 5.0, 5.0), 4, 1)
	assert.Equal(t, Num(2), got[4])
	assert.Equal(t, Num(3), got[5])
}

func TestSmooth(t *testing.T) {
	assert.Equal(t, series(3.0, 3.5, 4.0, 4.25), Smooth(series(3.0, nil, 5.0, nil)))
}

//Personal.AI order the ending
