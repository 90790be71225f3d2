package feed

import (
	"fmt"

	"github.com/ashburn-young/cokedemo/pkg/numbers"
	"github.com/markcheno/go-talib"
)

// months of order history required to derive a year-over-year trend.
const trendMonths = 24

// smoothingWindow is the SMA window applied before comparing years, so a
// single spike month does not masquerade as a trend.
const smoothingWindow = 3

// OrderVolumeTrend derives a year-over-year order volume trend percentage
// from 24 monthly volumes, oldest first. Volumes are SMA-smoothed, then the
// most recent year's average is compared against the prior year's.
func OrderVolumeTrend(volumes []float64) (float64, error) {
	if len(volumes) != trendMonths {
		return 0, fmt.Errorf("order volume trend needs %d monthly volumes, got %d", trendMonths, len(volumes))
	}

	smoothed := talib.Sma(volumes, smoothingWindow)

	// The first window-1 entries are zero padding from the SMA.
	prior := mean(smoothed[smoothingWindow-1 : trendMonths/2])
	recent := mean(smoothed[trendMonths/2:])
	if prior == 0 {
		return 0, nil
	}
	return numbers.Round2((recent - prior) / prior * 100), nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
