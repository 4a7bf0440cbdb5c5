package pdf

import "github.com/custodia-labs/officepdf/internal/core/domain"

// profile controls typography and table styling for one quality level.
type profile struct {
	bodySize    float64
	lineFactor  float64
	headingBase float64
	grid        bool
	shadeHeader bool
	cellPadding float64
}

var profiles = map[domain.Quality]profile{
	domain.QualityLow: {
		bodySize:    9,
		lineFactor:  1.25,
		headingBase: 15,
		cellPadding: 2,
	},
	domain.QualityMedium: {
		bodySize:    11,
		lineFactor:  1.35,
		headingBase: 18,
		grid:        true,
		cellPadding: 3,
	},
	domain.QualityHigh: {
		bodySize:    12,
		lineFactor:  1.5,
		headingBase: 20,
		grid:        true,
		shadeHeader: true,
		cellPadding: 4,
	},
}

func profileFor(q domain.Quality) profile {
	if p, ok := profiles[q]; ok {
		return p
	}
	return profiles[domain.DefaultQuality]
}

// lineHeight returns the baseline-to-baseline distance for a font size.
func (p profile) lineHeight(size float64) float64 {
	return size * p.lineFactor
}

// headingSize scales down from headingBase for deeper levels.
func (p profile) headingSize(level int) float64 {
	size := p.headingBase - float64(level-1)*2
	if size < p.bodySize+1 {
		size = p.bodySize + 1
	}
	return size
}
