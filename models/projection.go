package models

// MonthlyProjection is one future month of projected obligations.
type MonthlyProjection struct {
	Month             string `json:"month"` // YYYY-MM
	InstallmentsMinor int64  `json:"installments_minor"`
	RecurringMinor    int64  `json:"recurring_minor"`
	PlannedMinor      int64  `json:"planned_minor"`
	TotalMinor        int64  `json:"total_minor"`
}

// Risk tiers for the affordability simulation.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// SimulationResult is the outcome of injecting a hypothetical purchase into
// an existing projection series.
type SimulationResult struct {
	Series          []MonthlyProjection `json:"series"`
	PerPeriodMinor  int64               `json:"per_period_minor"`
	CeilingMinor    int64               `json:"ceiling_minor"`
	MonthsExceeded  int                 `json:"months_exceeded"`
	MaxOverageMinor int64               `json:"max_overage_minor"`
	Risk            string              `json:"risk"`
	Recommendation  string              `json:"recommendation"`
}

type SimulateRequest struct {
	Month            string `json:"month" binding:"required"`
	Horizon          int    `json:"horizon" binding:"required"`
	TotalAmountMinor int64  `json:"total_amount_minor" binding:"required"`
	Periods          int    `json:"periods" binding:"required"`
	CeilingMinor     int64  `json:"ceiling_minor"`
}
