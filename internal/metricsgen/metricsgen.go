// Package metricsgen produces the seeded mock time series behind the
// dashboard chart panels, mirroring the client-side generators of the
// original dashboard.
package metricsgen

import (
	"math"
	"math/rand"
	"time"
)

// Series is one chart's data.
type Series struct {
	Name   string    `json:"name"`
	Points []Point   `json:"points"`
	Start  time.Time `json:"start"`
	// Step is the interval between points.
	Step time.Duration `json:"step"`
}

// Point is a single sample.
type Point struct {
	Value float64 `json:"value"`
}

// Latest returns the most recent value, or 0 for an empty series.
func (s Series) Latest() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Value
}

// Delta returns the change from first to last point.
func (s Series) Delta() float64 {
	if len(s.Points) < 2 {
		return 0
	}
	return s.Points[len(s.Points)-1].Value - s.Points[0].Value
}

// Dashboard bundles the three series the overview panels chart.
type Dashboard struct {
	Visitors    Series `json:"visitors"`
	Conversions Series `json:"conversions"`
	MRR         Series `json:"mrr"`
}

// Generate builds a deterministic dashboard for the given seed: daily
// points over the given number of days ending at end. Visitors follow a
// noisy upward drift, conversions track visitors at a small rate, and MRR
// compounds slowly.
func Generate(seed int64, days int, end time.Time) Dashboard {
	rng := rand.New(rand.NewSource(seed))
	start := end.AddDate(0, 0, -days+1)

	visitors := Series{Name: "visitors", Start: start, Step: 24 * time.Hour}
	conversions := Series{Name: "conversions", Start: start, Step: 24 * time.Hour}
	mrr := Series{Name: "mrr", Start: start, Step: 24 * time.Hour}

	base := 800.0 + rng.Float64()*400
	monthly := 9200.0 + rng.Float64()*1800
	for i := 0; i < days; i++ {
		drift := 1 + 0.004*float64(i)
		noise := 0.85 + rng.Float64()*0.3
		v := math.Round(base * drift * noise)
		visitors.Points = append(visitors.Points, Point{Value: v})

		rate := 0.02 + rng.Float64()*0.015
		conversions.Points = append(conversions.Points, Point{Value: math.Round(v * rate)})

		monthly *= 1 + 0.0006 + rng.Float64()*0.0012
		mrr.Points = append(mrr.Points, Point{Value: math.Round(monthly)})
	}

	return Dashboard{Visitors: visitors, Conversions: conversions, MRR: mrr}
}

// Sparkline renders a series as a fixed-height unicode sparkline string.
func Sparkline(s Series, width int) string {
	if len(s.Points) == 0 || width < 1 {
		return ""
	}
	ticks := []rune("▁▂▃▄▅▆▇█")

	// Downsample to width points.
	sampled := make([]float64, 0, width)
	if len(s.Points) <= width {
		for _, p := range s.Points {
			sampled = append(sampled, p.Value)
		}
	} else if width == 1 {
		sampled = append(sampled, s.Points[len(s.Points)-1].Value)
	} else {
		for i := 0; i < width; i++ {
			idx := i * (len(s.Points) - 1) / (width - 1)
			sampled = append(sampled, s.Points[idx].Value)
		}
	}

	lo, hi := sampled[0], sampled[0]
	for _, v := range sampled {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]rune, len(sampled))
	for i, v := range sampled {
		if hi == lo {
			out[i] = ticks[0]
			continue
		}
		n := int((v - lo) / (hi - lo) * float64(len(ticks)-1))
		out[i] = ticks[n]
	}
	return string(out)
}
