package models

import "time"

// InstallmentObligation is a multi-period purchase reconstructed from the
// transaction history. Never persisted; always recomputed.
type InstallmentObligation struct {
	Merchant              string `json:"merchant"`
	PerPeriodAmountMinor  int64  `json:"per_period_amount_minor"`
	TotalInstallments     int    `json:"total_installments"`
	FurthestInstallment   int    `json:"furthest_installment"`
	RemainingInstallments int    `json:"remaining_installments"`
	TotalAmountMinor      int64  `json:"total_amount_minor"`
}

// RecurringCharge is a fixed monthly expense with a historically averaged
// amount (rent, utilities, subscriptions).
type RecurringCharge struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	Category        string    `json:"category"`
	MonthlyAvgMinor int64     `json:"monthly_avg_minor"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlannedPurchase is a future purchase the user intends to make, amortized
// evenly across its periods in projections.
type PlannedPurchase struct {
	ID               string    `json:"id"`
	Label            string    `json:"label"`
	TotalAmountMinor int64     `json:"total_amount_minor"`
	Periods          int       `json:"periods"`
	CreatedAt        time.Time `json:"created_at"`
}

type RecurringChargeRequest struct {
	Label           string `json:"label" binding:"required"`
	Category        string `json:"category"`
	MonthlyAvgMinor int64  `json:"monthly_avg_minor" binding:"required"`
}

type PlannedPurchaseRequest struct {
	Label            string `json:"label" binding:"required"`
	TotalAmountMinor int64  `json:"total_amount_minor" binding:"required"`
	Periods          int    `json:"periods" binding:"required"`
}
