package services

import (
	"testing"
	"time"

	"github.com/hogarapp/gastos-api/models"

	"github.com/stretchr/testify/assert"
)

func march() time.Time { return day("2024-03-01") }

func TestProjectSeries_InstallmentTailsOff(t *testing.T) {
	// 4 remaining cuotas of 100000: months 0-3 carry the charge, months 4+
	// drop to zero.
	obligations := []models.InstallmentObligation{
		{Merchant: "fravega", PerPeriodAmountMinor: 100000, TotalInstallments: 6, FurthestInstallment: 2, RemainingInstallments: 4},
	}

	series := ProjectSeries(obligations, nil, nil, march(), 6)

	assert.Len(t, series, 6)
	for i := 0; i < 4; i++ {
		assert.Equal(t, int64(100000), series[i].InstallmentsMinor, "month %d", i)
	}
	for i := 4; i < 6; i++ {
		assert.Equal(t, int64(0), series[i].InstallmentsMinor, "month %d", i)
	}
	assert.Equal(t, "2024-03", series[0].Month)
	assert.Equal(t, "2024-08", series[5].Month)
}

func TestProjectSeries_ComponentsSumToTotal(t *testing.T) {
	obligations := []models.InstallmentObligation{
		{Merchant: "fravega", PerPeriodAmountMinor: 100000, RemainingInstallments: 4},
		{Merchant: "garbarino", PerPeriodAmountMinor: 40000, RemainingInstallments: 2},
	}
	recurring := []models.RecurringCharge{
		{Label: "Alquiler", MonthlyAvgMinor: 350000},
		{Label: "Internet", MonthlyAvgMinor: 25000},
	}
	planned := []models.PlannedPurchase{
		{Label: "Heladera", TotalAmountMinor: 240000, Periods: 3},
	}

	series := ProjectSeries(obligations, recurring, planned, march(), 12)

	assert.Len(t, series, 12)
	for i, entry := range series {
		assert.Equal(t, entry.InstallmentsMinor+entry.RecurringMinor+entry.PlannedMinor, entry.TotalMinor, "month %d", i)
		assert.Equal(t, int64(375000), entry.RecurringMinor, "recurring applies to every month")
	}

	assert.Equal(t, int64(140000), series[0].InstallmentsMinor)
	assert.Equal(t, int64(140000), series[1].InstallmentsMinor)
	assert.Equal(t, int64(100000), series[2].InstallmentsMinor)
	assert.Equal(t, int64(0), series[4].InstallmentsMinor)

	assert.Equal(t, int64(80000), series[0].PlannedMinor)
	assert.Equal(t, int64(80000), series[2].PlannedMinor)
	assert.Equal(t, int64(0), series[3].PlannedMinor)
}

func TestProjectSeries_Deterministic(t *testing.T) {
	obligations := []models.InstallmentObligation{
		{Merchant: "fravega", PerPeriodAmountMinor: 100000, RemainingInstallments: 4},
	}
	recurring := []models.RecurringCharge{{Label: "Luz", MonthlyAvgMinor: 42000}}

	a := ProjectSeries(obligations, recurring, nil, march(), 12)
	b := ProjectSeries(obligations, recurring, nil, march(), 12)

	assert.Equal(t, a, b)
}

func TestSimulate_MediumRiskScenario(t *testing.T) {
	// 1,200,000 over 12 periods (100,000/month) against a series where only
	// months 0-2 end up over the ceiling: 3 exceeded <= 12/3, medium risk.
	series := make([]models.MonthlyProjection, 12)
	for i := range series {
		total := int64(350000)
		if i < 3 {
			total = 450000
		}
		series[i] = models.MonthlyProjection{Month: "2024-03", TotalMinor: total}
	}

	result := Simulate(series, 1200000, 12, 500000)

	assert.Equal(t, int64(100000), result.PerPeriodMinor)
	assert.Equal(t, 3, result.MonthsExceeded)
	assert.Equal(t, int64(50000), result.MaxOverageMinor)
	assert.Equal(t, models.RiskMedium, result.Risk)
	assert.NotEmpty(t, result.Recommendation)
	assert.Len(t, result.Series, 12)
}

func TestSimulate_NoExceededMeansLowRisk(t *testing.T) {
	series := make([]models.MonthlyProjection, 6)
	for i := range series {
		series[i] = models.MonthlyProjection{TotalMinor: 200000}
	}

	result := Simulate(series, 300000, 6, 500000)

	assert.Equal(t, 0, result.MonthsExceeded)
	assert.Equal(t, models.RiskLow, result.Risk)
	assert.Equal(t, int64(0), result.MaxOverageMinor)
}

func TestSimulate_HighRisk(t *testing.T) {
	series := make([]models.MonthlyProjection, 6)
	for i := range series {
		series[i] = models.MonthlyProjection{TotalMinor: 490000}
	}

	// 60000/month pushes every one of the 6 months over: 6 > 6/3 = 2.
	result := Simulate(series, 360000, 6, 500000)

	assert.Equal(t, 6, result.MonthsExceeded)
	assert.Equal(t, models.RiskHigh, result.Risk)
}

func TestSimulate_AugmentsOnlyPurchasePeriods(t *testing.T) {
	series := make([]models.MonthlyProjection, 12)
	result := Simulate(series, 240000, 3, 1000000)

	for i, entry := range result.Series {
		if i < 3 {
			assert.Equal(t, int64(80000), entry.TotalMinor, "month %d", i)
		} else {
			assert.Equal(t, int64(0), entry.TotalMinor, "month %d", i)
		}
	}
	assert.Equal(t, models.RiskLow, result.Risk)
}

func TestSimulate_DoesNotMutateInputSeries(t *testing.T) {
	series := []models.MonthlyProjection{{TotalMinor: 100}, {TotalMinor: 100}}
	Simulate(series, 600, 2, 1000)

	assert.Equal(t, int64(100), series[0].TotalMinor)
	assert.Equal(t, int64(100), series[1].TotalMinor)
}
