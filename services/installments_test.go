package services

import (
	"testing"

	"github.com/hogarapp/gastos-api/models"

	"github.com/stretchr/testify/assert"
)

func installmentTx(id, merchant string, amountMinor int64, date string, current, total int) models.Transaction {
	t := tx(id, merchant, amountMinor, date)
	t.CurrentInstallment = &current
	t.TotalInstallments = &total
	return t
}

func TestGroupObligations_Scenario(t *testing.T) {
	// A 600000 purchase in 6 cuotas with 2 already charged leaves 4 pending.
	history := []models.Transaction{
		installmentTx("t1", "Fravega S.A.", 100000, "2024-01-10", 1, 6),
		installmentTx("t2", "Fravega S.A.", 100000, "2024-02-10", 2, 6),
		tx("t3", "Coto", 31000, "2024-02-12"),
	}

	obligations := GroupObligations(history)

	assert.Len(t, obligations, 1)
	o := obligations[0]
	assert.Equal(t, "fravega", o.Merchant)
	assert.Equal(t, int64(100000), o.PerPeriodAmountMinor)
	assert.Equal(t, 6, o.TotalInstallments)
	assert.Equal(t, 2, o.FurthestInstallment)
	assert.Equal(t, 4, o.RemainingInstallments)
	assert.Equal(t, int64(600000), o.TotalAmountMinor)
}

func TestGroupObligations_CompletedExcluded(t *testing.T) {
	history := []models.Transaction{
		installmentTx("t1", "Garbarino", 50000, "2024-01-05", 2, 3),
		installmentTx("t2", "Garbarino", 50000, "2024-02-05", 3, 3),
	}

	assert.Empty(t, GroupObligations(history))
}

func TestGroupObligations_SpotAndInvalidSkipped(t *testing.T) {
	history := []models.Transaction{
		tx("spot", "Coto", 5000, "2024-03-01"),
		installmentTx("one-of-one", "Dia", 3000, "2024-03-02", 1, 1),
		installmentTx("beyond-total", "Vea", 8000, "2024-03-03", 5, 3),
		installmentTx("pending", "Jumbo", 9000, "2024-03-04", 1, 3),
	}

	obligations := GroupObligations(history)

	assert.Len(t, obligations, 1)
	assert.Equal(t, "jumbo", obligations[0].Merchant)
}

func TestGroupObligations_SortedByAmountDesc(t *testing.T) {
	history := []models.Transaction{
		installmentTx("small", "Dia", 20000, "2024-03-01", 1, 4),
		installmentTx("big", "Fravega", 150000, "2024-03-02", 1, 12),
		installmentTx("mid", "Garbarino", 70000, "2024-03-03", 1, 6),
	}

	obligations := GroupObligations(history)

	assert.Len(t, obligations, 3)
	assert.Equal(t, int64(150000), obligations[0].PerPeriodAmountMinor)
	assert.Equal(t, int64(70000), obligations[1].PerPeriodAmountMinor)
	assert.Equal(t, int64(20000), obligations[2].PerPeriodAmountMinor)
}

func TestGroupObligations_SeparateGroupsPerTuple(t *testing.T) {
	// Same merchant, different per-period amount or total count: distinct
	// purchases, distinct obligations.
	history := []models.Transaction{
		installmentTx("a1", "Fravega", 100000, "2024-01-10", 1, 6),
		installmentTx("b1", "Fravega", 100000, "2024-02-15", 1, 12),
		installmentTx("c1", "Fravega", 60000, "2024-02-20", 1, 6),
	}

	obligations := GroupObligations(history)

	assert.Len(t, obligations, 3)
	for _, o := range obligations {
		assert.Greater(t, o.RemainingInstallments, 0)
	}
}
