package stats

import (
	"math"

	"nsight/vigil/defs"

	"github.com/montanaflynn/stats"
)

const (
	mmolConversionFactor = 18.0

	// Target bounds below this are assumed to be mmol/L when the display
	// unit is mmol/L. A genuine mg/dL bound under 20 would be misread;
	// callers wanting exact behavior should pass bounds in mg/dL.
	mmolBoundCeiling = 20.0

	// GMI formula coefficients: eA1c(%) = 3.31 + 0.02392 * mean(mg/dL).
	gmiIntercept = 3.31
	gmiSlope     = 0.02392

	// PGS = mean + factor * stdev.
	pgsVariabilityFactor = 1.0
)

func MgdlToMmol(mgdl float64) float64 {
	return round(mgdl/mmolConversionFactor, 1)
}

func MmolToMgdl(mmol float64) float64 {
	return round(mmol*mmolConversionFactor, 0)
}

// ExtractValues flattens entries into the glucose values usable for
// statistics, in delivery order. Entries without an SGV are skipped; a
// value of exactly zero counts as missing.
func ExtractValues(entries []defs.Entry) []float64 {
	values := make([]float64, 0, len(entries))
	for _, e := range entries {
		if e.SGV != 0 {
			values = append(values, e.SGV)
		}
	}
	return values
}

// Summary holds every derived metric for one series. A nil metric means
// its precondition was unmet (typically too few samples); that is a normal
// outcome for short windows, not an error. MeanBG, MedianBG, Stdev and PGS
// are reported in Unit, the percentage metrics are unit-agnostic.
type Summary struct {
	EA1c           *float64 `json:"ea1c"`
	MeanBG         *float64 `json:"mean_bg"`
	MedianBG       *float64 `json:"median_bg"`
	Stdev          *float64 `json:"stdev"`
	CV             *float64 `json:"cv"`
	GVI            *float64 `json:"gvi"`
	PGS            *float64 `json:"pgs"`
	TimeInRange    *float64 `json:"time_in_range"`
	TimeBelowRange *float64 `json:"time_below_range"`
	TimeAboveRange *float64 `json:"time_above_range"`
	Samples        int      `json:"samples"`
	Unit           string   `json:"unit"`
}

// Compute derives all metrics from values (mg/dL, delivery order) against
// the target range. GVI is deliberately computed over the series as
// delivered rather than re-sorted by time; adjacent absolute differences
// make the result symmetric for reversed order but not for shuffled input.
func Compute(values []float64, targetMin, targetMax float64, unit string) Summary {
	s := Summary{Samples: len(values), Unit: unit}

	if unit == defs.UnitMmol {
		if targetMin < mmolBoundCeiling {
			targetMin = MmolToMgdl(targetMin)
		}
		if targetMax < mmolBoundCeiling {
			targetMax = MmolToMgdl(targetMax)
		}
	}

	if len(values) == 0 {
		return s
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)

	s.EA1c = fptr(round(gmiIntercept+gmiSlope*mean, 1))
	s.MeanBG = fptr(display(mean, unit))
	s.MedianBG = fptr(display(median, unit))

	below, above := 0.0, 0.0
	for _, v := range values {
		switch {
		case v < targetMin:
			below++
		case v > targetMax:
			above++
		}
	}
	total := float64(len(values))
	s.TimeInRange = fptr(round((total-below-above)/total*100, 1))
	s.TimeBelowRange = fptr(round(below/total*100, 1))
	s.TimeAboveRange = fptr(round(above/total*100, 1))

	if len(values) < 2 {
		return s
	}

	stdev, _ := stats.StandardDeviationSample(values)
	s.Stdev = fptr(display(stdev, unit))
	if mean != 0 {
		s.CV = fptr(round(stdev/mean*100, 1))
	}

	variation := 0.0
	for i := 1; i < len(values); i++ {
		variation += math.Abs(values[i] - values[i-1])
	}
	s.GVI = fptr(round(variation/total, 2))
	s.PGS = fptr(display(mean+pgsVariabilityFactor*stdev, unit))

	return s
}

func display(mgdl float64, unit string) float64 {
	if unit == defs.UnitMmol {
		return MgdlToMmol(mgdl)
	}
	return round(mgdl, 1)
}

func round(v float64, places int) float64 {
	r, _ := stats.Round(v, places)
	return r
}

func fptr(v float64) *float64 {
	return &v
}
