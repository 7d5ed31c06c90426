package services

import (
	"math"

	"github.com/hogarapp/gastos-api/models"
)

// ScoreMatch rates how likely a provisional manual transaction and an
// imported statement transaction describe the same purchase. The score is an
// integer 0-100 split into merchant (0-70), amount (0-25) and date (0-5)
// points. It never fails: malformed fields just contribute zero points so the
// rest of the batch still classifies.
func ScoreMatch(provisional, imported models.Transaction) models.MatchCandidate {
	breakdown := models.ScoreBreakdown{
		MerchantPoints: merchantPoints(provisional, imported),
		AmountPoints:   amountPoints(provisional.AmountMinor, imported.AmountMinor),
		DatePoints:     datePoints(provisional, imported),
	}

	return models.MatchCandidate{
		Provisional: provisional,
		Imported:    imported,
		Score:       breakdown.MerchantPoints + breakdown.AmountPoints + breakdown.DatePoints,
		Breakdown:   breakdown,
	}
}

func merchantPoints(a, b models.Transaction) int {
	na := a.MerchantNormalized
	if na == "" {
		na = NormalizeMerchant(a.MerchantRaw)
	}
	nb := b.MerchantNormalized
	if nb == "" {
		nb = NormalizeMerchant(b.MerchantRaw)
	}
	if na == "" && nb == "" {
		return 0
	}
	return int(math.Round(Similarity(na, nb) * models.MerchantMaxPoints))
}

// amountPoints scores amount proximity. The percentage difference is always
// taken over the provisional amount; that asymmetry is part of the score
// contract and decides which pairs auto-match, so it must not be averaged
// away.
func amountPoints(provisional, imported int64) int {
	if provisional == 0 {
		if imported == 0 {
			return models.AmountMaxPoints
		}
		return 0
	}

	diff := provisional - imported
	if diff < 0 {
		diff = -diff
	}
	pctDiff := float64(diff) / math.Abs(float64(provisional)) * 100

	switch {
	case pctDiff == 0:
		return 25
	case pctDiff <= 5:
		return 20
	case pctDiff <= 10:
		return 10
	default:
		return 0
	}
}

func datePoints(a, b models.Transaction) int {
	if a.Date.IsZero() || b.Date.IsZero() {
		return 0
	}
	daysDiff := int(math.Abs(a.Date.Sub(b.Date).Hours()) / 24)

	switch {
	case daysDiff == 0:
		return 5
	case daysDiff <= 2:
		return 4
	case daysDiff <= 5:
		return 2
	default:
		return 0
	}
}
