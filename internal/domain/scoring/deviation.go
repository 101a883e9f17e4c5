package scoring

import "math"

// Band classifies how far an offer is from its estimation.
type Band string

const (
	BandNeutral Band = "neutral"
	BandLow     Band = "low"
	BandMedium  Band = "medium"
	BandHigh    Band = "high"
)

// Deviation is the signed relative gap between an offer and an estimation.
type Deviation struct {
	Offered   float64 `json:"offered"`
	Estimated float64 `json:"estimated"`
	// Ratio is (offered - estimated) / |estimated|; meaningless when Band is neutral.
	Ratio float64 `json:"ratio"`
	Band  Band    `json:"band"`
}

// Deviate computes the deviation of offered against estimated.
func Deviate(offered, estimated float64) Deviation {
	d := Deviation{Offered: offered, Estimated: estimated, Band: BandNeutral}
	if estimated == 0 || offered == 0 {
		return d
	}
	d.Ratio = (offered - estimated) / math.Abs(estimated)
	switch {
	case d.Ratio <= 0.10+scoreEpsilon:
		d.Band = BandLow
	case d.Ratio <= 0.20+scoreEpsilon:
		d.Band = BandMedium
	default:
		d.Band = BandHigh
	}
	return d
}
