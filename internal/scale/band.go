package scale

import "math"

// Band divides a continuous range into evenly spaced bands, one per label.
// Inner and outer padding are equal and the bands are centred in the range.
type Band struct {
	labels    []string
	index     map[string]int
	positions []float64
	step      float64
	bandwidth float64
}

// NewBand builds a band scale. Padding is clamped to [0,1). Duplicate labels
// keep their first position. A reversed range (lo > hi) lays bands out from hi.
func NewBand(labels []string, lo, hi, padding float64) *Band {
	if padding < 0 || math.IsNaN(padding) {
		padding = 0
	}
	if padding >= 1 {
		padding = math.Nextafter(1, 0)
	}
	b := &Band{index: make(map[string]int, len(labels))}
	for _, l := range labels {
		if _, ok := b.index[l]; ok {
			continue
		}
		b.index[l] = len(b.labels)
		b.labels = append(b.labels, l)
	}

	n := float64(len(b.labels))
	reverse := hi < lo
	start, stop := lo, hi
	if reverse {
		start, stop = hi, lo
	}
	b.step = (stop - start) / math.Max(1, n-padding+padding*2)
	start += (stop - start - b.step*(n-padding)) * 0.5
	b.bandwidth = b.step * (1 - padding)

	b.positions = make([]float64, len(b.labels))
	for i := range b.positions {
		b.positions[i] = start + b.step*float64(i)
	}
	if reverse {
		for i, j := 0, len(b.positions)-1; i < j; i, j = i+1, j-1 {
			b.positions[i], b.positions[j] = b.positions[j], b.positions[i]
		}
	}
	return b
}

// Position returns the start of the band for label.
func (b *Band) Position(label string) (float64, bool) {
	i, ok := b.index[label]
	if !ok {
		return 0, false
	}
	return b.positions[i], true
}

// Bandwidth is the width of every band.
func (b *Band) Bandwidth() float64 { return b.bandwidth }

// Step is the distance between the starts of adjacent bands.
func (b *Band) Step() float64 { return b.step }

// Labels returns the de-duplicated domain in order.
func (b *Band) Labels() []string { return append([]string(nil), b.labels...) }
