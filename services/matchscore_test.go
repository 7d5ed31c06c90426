package services

import (
	"testing"
	"time"

	"github.com/hogarapp/gastos-api/models"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func tx(id, merchant string, amountMinor int64, date string) models.Transaction {
	return models.Transaction{
		ID:          id,
		MerchantRaw: merchant,
		AmountMinor: amountMinor,
		Date:        day(date),
	}
}

func TestScoreMatch_ExactPair(t *testing.T) {
	p := tx("p1", "Uber Trip", 8500, "2024-03-05")
	c := tx("c1", "UBER   TRIP", 8500, "2024-03-05")

	m := ScoreMatch(p, c)

	assert.Equal(t, 100, m.Score)
	assert.Equal(t, 70, m.Breakdown.MerchantPoints)
	assert.Equal(t, 25, m.Breakdown.AmountPoints)
	assert.Equal(t, 5, m.Breakdown.DatePoints)
}

func TestScoreMatch_AmountBoundaryStillAuto(t *testing.T) {
	// 8500 vs 9000 is a 5.9% difference over the provisional amount: 10
	// amount points, total 85, which is auto-match inclusive.
	p := tx("p1", "Uber Trip", 8500, "2024-03-05")
	c := tx("c1", "UBER   TRIP", 9000, "2024-03-05")

	m := ScoreMatch(p, c)

	assert.Equal(t, 10, m.Breakdown.AmountPoints)
	assert.Equal(t, 85, m.Score)
	assert.GreaterOrEqual(t, m.Score, models.AutoMatchThreshold)
}

func TestScoreMatch_AmountAsymmetry(t *testing.T) {
	// The percentage base is always the provisional amount. 1000 vs 1100 is
	// 10% of 1000 (10 points); swapped it is ~9.1% of 1100 (still 10), but
	// 1000 vs 1051 is 5.1% one way and ~4.85% the other, crossing the 5% tier.
	p := tx("p1", "Shop", 1000, "2024-03-05")
	c := tx("c1", "Shop", 1051, "2024-03-05")
	assert.Equal(t, 10, ScoreMatch(p, c).Breakdown.AmountPoints)

	p2 := tx("p2", "Shop", 1051, "2024-03-05")
	c2 := tx("c2", "Shop", 1000, "2024-03-05")
	assert.Equal(t, 20, ScoreMatch(p2, c2).Breakdown.AmountPoints)
}

func TestScoreMatch_DateTiers(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2024-03-05", 5},
		{"2024-03-07", 4},
		{"2024-03-10", 2},
		{"2024-03-12", 0},
	}
	p := tx("p1", "Shop", 1000, "2024-03-05")
	for _, tc := range cases {
		c := tx("c1", "Shop", 1000, tc.date)
		assert.Equal(t, tc.want, ScoreMatch(p, c).Breakdown.DatePoints, "date %s", tc.date)
	}
}

func TestScoreMatch_SuggestedTier(t *testing.T) {
	// Same merchant, 7% amount difference, 7 days apart: 70 + 10 + 0 = 80.
	p := tx("p1", "Farmacity", 10000, "2024-03-05")
	c := tx("c1", "Farmacity", 10700, "2024-03-12")

	m := ScoreMatch(p, c)

	assert.Equal(t, 80, m.Score)
	assert.GreaterOrEqual(t, m.Score, models.SuggestedMatchThreshold)
	assert.Less(t, m.Score, models.AutoMatchThreshold)
}

func TestScoreMatch_DegradesGracefullyOnBadInput(t *testing.T) {
	p := models.Transaction{ID: "p1"} // no merchant, no amount, zero date
	c := tx("c1", "Shop", 1000, "2024-03-05")

	m := ScoreMatch(p, c)

	assert.Equal(t, 0, m.Breakdown.MerchantPoints)
	assert.Equal(t, 0, m.Breakdown.AmountPoints)
	assert.Equal(t, 0, m.Breakdown.DatePoints)
	assert.Equal(t, 0, m.Score)
}

func TestScoreMatch_BoundsAndDiscreteSets(t *testing.T) {
	merchants := []string{"Coto", "Coto Sucursal 12", "Jumbo", ""}
	amounts := []int64{0, 500, 8500, 9000, 100000}
	dates := []string{"2024-03-01", "2024-03-04", "2024-03-09", "2024-03-31"}

	amountSet := map[int]bool{0: true, 10: true, 20: true, 25: true}
	dateSet := map[int]bool{0: true, 2: true, 4: true, 5: true}

	for _, ma := range merchants {
		for _, aa := range amounts {
			for _, da := range dates {
				p := tx("p", ma, aa, da)
				c := tx("c", "Coto", 8500, "2024-03-01")
				m := ScoreMatch(p, c)

				assert.GreaterOrEqual(t, m.Score, 0)
				assert.LessOrEqual(t, m.Score, 100)
				assert.GreaterOrEqual(t, m.Breakdown.MerchantPoints, 0)
				assert.LessOrEqual(t, m.Breakdown.MerchantPoints, 70)
				assert.True(t, amountSet[m.Breakdown.AmountPoints], "amount points %d", m.Breakdown.AmountPoints)
				assert.True(t, dateSet[m.Breakdown.DatePoints], "date points %d", m.Breakdown.DatePoints)
				assert.Equal(t, m.Score, m.Breakdown.MerchantPoints+m.Breakdown.AmountPoints+m.Breakdown.DatePoints)
			}
		}
	}
}
