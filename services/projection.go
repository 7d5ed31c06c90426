package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hogarapp/gastos-api/models"

	"github.com/google/uuid"
)

// Horizons offered by the projection screens.
var allowedHorizons = map[int]bool{6: true, 12: true, 18: true, 24: true}

func ValidHorizon(h int) bool { return allowedHorizons[h] }

// ProjectionService builds month-by-month obligation projections and runs
// affordability simulations over them.
type ProjectionService struct {
	db           *sql.DB
	transactions *TransactionService
	installments *InstallmentService
}

func NewProjectionService(db *sql.DB, transactions *TransactionService, installments *InstallmentService) *ProjectionService {
	return &ProjectionService{db: db, transactions: transactions, installments: installments}
}

// ProjectSeries is the pure fold behind every projection: for each month
// offset it sums active installment charges still pending, recurring monthly
// averages, and planned purchases amortized evenly across their periods.
// Re-running with the same inputs always yields the same series.
func ProjectSeries(
	obligations []models.InstallmentObligation,
	recurring []models.RecurringCharge,
	planned []models.PlannedPurchase,
	startMonth time.Time,
	horizon int,
) []models.MonthlyProjection {
	series := make([]models.MonthlyProjection, 0, horizon)

	var recurringTotal int64
	for _, r := range recurring {
		recurringTotal += r.MonthlyAvgMinor
	}

	for i := 0; i < horizon; i++ {
		entry := models.MonthlyProjection{
			Month:          startMonth.AddDate(0, i, 0).Format("2006-01"),
			RecurringMinor: recurringTotal,
		}

		for _, o := range obligations {
			if i < o.RemainingInstallments {
				entry.InstallmentsMinor += o.PerPeriodAmountMinor
			}
		}
		for _, p := range planned {
			if p.Periods > 0 && i < p.Periods {
				entry.PlannedMinor += p.TotalAmountMinor / int64(p.Periods)
			}
		}

		entry.TotalMinor = entry.InstallmentsMinor + entry.RecurringMinor + entry.PlannedMinor
		series = append(series, entry)
	}
	return series
}

// Project assembles the inputs from storage and folds them into a series
// starting at the given YYYY-MM month.
func (s *ProjectionService) Project(ctx context.Context, month string, horizon int) ([]models.MonthlyProjection, error) {
	if !ValidHorizon(horizon) {
		return nil, fmt.Errorf("horizon must be one of 6, 12, 18, 24 months, got %d", horizon)
	}
	start, _, err := MonthRange(month)
	if err != nil {
		return nil, err
	}

	obligations, err := s.installments.ActiveObligations(ctx)
	if err != nil {
		return nil, err
	}
	recurring, err := s.ListRecurring(ctx)
	if err != nil {
		return nil, err
	}
	planned, err := s.ListPlanned(ctx)
	if err != nil {
		return nil, err
	}

	return ProjectSeries(obligations, recurring, planned, start, horizon), nil
}

// Simulate injects a hypothetical purchase into an existing series and
// classifies risk by how many months would exceed the ceiling.
func Simulate(series []models.MonthlyProjection, totalAmountMinor int64, periods int, ceilingMinor int64) models.SimulationResult {
	if periods < 1 {
		periods = 1
	}
	perPeriod := totalAmountMinor / int64(periods)

	augmented := make([]models.MonthlyProjection, len(series))
	copy(augmented, series)

	monthsExceeded := 0
	var maxOverage int64
	for i := range augmented {
		if i < periods {
			augmented[i].PlannedMinor += perPeriod
			augmented[i].TotalMinor += perPeriod
		}
		if augmented[i].TotalMinor > ceilingMinor {
			monthsExceeded++
			if overage := augmented[i].TotalMinor - ceilingMinor; overage > maxOverage {
				maxOverage = overage
			}
		}
	}

	risk := models.RiskHigh
	switch {
	case monthsExceeded == 0:
		risk = models.RiskLow
	case monthsExceeded <= periods/3:
		risk = models.RiskMedium
	}

	return models.SimulationResult{
		Series:          augmented,
		PerPeriodMinor:  perPeriod,
		CeilingMinor:    ceilingMinor,
		MonthsExceeded:  monthsExceeded,
		MaxOverageMinor: maxOverage,
		Risk:            risk,
		Recommendation:  recommendationFor(risk, monthsExceeded, periods),
	}
}

func recommendationFor(risk string, monthsExceeded, periods int) string {
	switch risk {
	case models.RiskLow:
		return "The purchase fits: no projected month goes over budget."
	case models.RiskMedium:
		return fmt.Sprintf("Doable but tight: %d of %d installment months go over budget. Consider fewer cuotas or waiting for an active installment to finish.", monthsExceeded, periods)
	default:
		return fmt.Sprintf("Not recommended right now: %d months would go over budget. Wait for current installments to finish or reduce the amount.", monthsExceeded)
	}
}

// SimulatePurchase builds the base series and runs the simulation. A zero
// ceiling means "use the historical average monthly spend plus a 10% margin".
func (s *ProjectionService) SimulatePurchase(ctx context.Context, req models.SimulateRequest) (*models.SimulationResult, error) {
	series, err := s.Project(ctx, req.Month, req.Horizon)
	if err != nil {
		return nil, err
	}

	ceiling := req.CeilingMinor
	if ceiling == 0 {
		avg, err := s.transactions.AverageMonthlySpend(ctx)
		if err != nil {
			return nil, err
		}
		ceiling = avg + avg/10
	}

	result := Simulate(series, req.TotalAmountMinor, req.Periods, ceiling)
	return &result, nil
}

// --- planning inputs (recurring charges, planned purchases) ---

func (s *ProjectionService) ListRecurring(ctx context.Context) ([]models.RecurringCharge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, COALESCE(category, ''), monthly_avg_minor, created_at
		FROM recurring_charges ORDER BY monthly_avg_minor DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring charges: %w", err)
	}
	defer rows.Close()

	var out []models.RecurringCharge
	for rows.Next() {
		var r models.RecurringCharge
		if err := rows.Scan(&r.ID, &r.Label, &r.Category, &r.MonthlyAvgMinor, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ProjectionService) CreateRecurring(ctx context.Context, req models.RecurringChargeRequest) (*models.RecurringCharge, error) {
	r := models.RecurringCharge{
		ID:              uuid.New().String(),
		Label:           req.Label,
		Category:        req.Category,
		MonthlyAvgMinor: req.MonthlyAvgMinor,
		CreatedAt:       time.Now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_charges (id, label, category, monthly_avg_minor, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.ID, r.Label, r.Category, r.MonthlyAvgMinor, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring charge: %w", err)
	}
	return &r, nil
}

func (s *ProjectionService) DeleteRecurring(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recurring_charges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring charge: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *ProjectionService) ListPlanned(ctx context.Context) ([]models.PlannedPurchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, total_amount_minor, periods, created_at
		FROM planned_purchases ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list planned purchases: %w", err)
	}
	defer rows.Close()

	var out []models.PlannedPurchase
	for rows.Next() {
		var p models.PlannedPurchase
		if err := rows.Scan(&p.ID, &p.Label, &p.TotalAmountMinor, &p.Periods, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ProjectionService) CreatePlanned(ctx context.Context, req models.PlannedPurchaseRequest) (*models.PlannedPurchase, error) {
	if req.Periods < 1 {
		return nil, fmt.Errorf("periods must be at least 1, got %d", req.Periods)
	}
	p := models.PlannedPurchase{
		ID:               uuid.New().String(),
		Label:            req.Label,
		TotalAmountMinor: req.TotalAmountMinor,
		Periods:          req.Periods,
		CreatedAt:        time.Now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO planned_purchases (id, label, total_amount_minor, periods, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.Label, p.TotalAmountMinor, p.Periods, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create planned purchase: %w", err)
	}
	return &p, nil
}

func (s *ProjectionService) DeletePlanned(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM planned_purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete planned purchase: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
