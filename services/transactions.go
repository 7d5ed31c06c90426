package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hogarapp/gastos-api/models"
	"github.com/hogarapp/gastos-api/utils"

	"github.com/google/uuid"
)

var ErrTransactionNotFound = errors.New("transaction not found")

const txColumns = `id, date, merchant_raw, merchant_normalized, amount_minor, category,
	COALESCE(alternate_category, ''), current_installment, total_installments,
	origin, status, related_transaction_id, original_free_text, COALESCE(note, ''),
	created_at, updated_at`

type TransactionService struct {
	db         *sql.DB
	categories *CategoryLookup
}

func NewTransactionService(db *sql.DB, categories *CategoryLookup) *TransactionService {
	return &TransactionService{db: db, categories: categories}
}

// MonthRange converts a YYYY-MM accounting month into its [start, end) day
// bounds.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// ListByMonth returns transactions whose date falls in the given accounting
// month, optionally filtered by status and origin (empty string = any).
func (s *TransactionService) ListByMonth(ctx context.Context, month, status, origin string) ([]models.Transaction, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE date >= $1 AND date < $2
		  AND ($3 = '' OR status = $3)
		  AND ($4 = '' OR origin = $4)
		ORDER BY date, created_at
	`
	rows, err := s.db.QueryContext(ctx, query, start, end, status, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for %s: %w", month, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListAll returns the full transaction history, oldest first. Used by the
// installment grouper and for the spending average.
func (s *TransactionService) ListAll(ctx context.Context) ([]models.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions ORDER BY date, created_at`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *TransactionService) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, id)

	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateManual inserts a provisional manual entry. The raw description is
// preserved as original_free_text so a later merge keeps the audit trail.
func (s *TransactionService) CreateManual(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}

	t := models.Transaction{
		ID:                 uuid.New().String(),
		Date:               date,
		MerchantRaw:        req.Merchant,
		MerchantNormalized: NormalizeMerchant(req.Merchant),
		AmountMinor:        req.AmountMinor,
		Category:           req.Category,
		CurrentInstallment: req.CurrentInstallment,
		TotalInstallments:  req.TotalInstallments,
		Origin:             models.OriginManual,
		Status:             models.StatusProvisional,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if err := t.ValidateInstallments(); err != nil {
		return nil, err
	}
	if t.Category == "" && s.categories != nil {
		t.Category, _ = s.categories.Lookup(ctx, req.Merchant)
	}
	freeText := req.FreeText
	if freeText == "" {
		freeText = req.Merchant
	}
	t.OriginalFreeText = &freeText

	query := `
		INSERT INTO transactions
			(id, date, merchant_raw, merchant_normalized, amount_minor, category,
			 current_installment, total_installments, origin, status,
			 original_free_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(ctx, query,
		t.ID, t.Date, t.MerchantRaw, t.MerchantNormalized, t.AmountMinor, t.Category,
		t.CurrentInstallment, t.TotalInstallments, t.Origin, t.Status,
		t.OriginalFreeText, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return &t, nil
}

// ImportBatch inserts statement rows (parsed upstream) as confirmed imported
// transactions for the given month. Rows missing a category get one from the
// lookup service. The whole batch commits atomically.
func (s *TransactionService) ImportBatch(ctx context.Context, month string, importRows []models.ImportRow) ([]models.Transaction, error) {
	if _, _, err := MonthRange(month); err != nil {
		return nil, err
	}

	inserted := make([]models.Transaction, 0, len(importRows))
	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		for i, r := range importRows {
			date, err := time.Parse("2006-01-02", r.Date)
			if err != nil {
				return fmt.Errorf("row %d: invalid date %q: %w", i, r.Date, err)
			}

			t := models.Transaction{
				ID:                 uuid.New().String(),
				Date:               date,
				MerchantRaw:        r.Merchant,
				MerchantNormalized: NormalizeMerchant(r.Merchant),
				AmountMinor:        r.AmountMinor,
				Category:           r.Category,
				CurrentInstallment: r.CurrentInstallment,
				TotalInstallments:  r.TotalInstallments,
				Origin:             models.OriginImported,
				Status:             models.StatusConfirmed,
				CreatedAt:          time.Now(),
				UpdatedAt:          time.Now(),
			}
			if err := t.ValidateInstallments(); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			if t.Category == "" && s.categories != nil {
				t.Category, _ = s.categories.Lookup(ctx, r.Merchant)
			}

			query := `
				INSERT INTO transactions
					(id, date, merchant_raw, merchant_normalized, amount_minor, category,
					 current_installment, total_installments, origin, status,
					 created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`
			if _, err := tx.ExecContext(ctx, query,
				t.ID, t.Date, t.MerchantRaw, t.MerchantNormalized, t.AmountMinor, t.Category,
				t.CurrentInstallment, t.TotalInstallments, t.Origin, t.Status,
				t.CreatedAt, t.UpdatedAt,
			); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			inserted = append(inserted, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

// Update applies a partial edit to a transaction. Changing the merchant
// refreshes the cached normalized form.
func (s *TransactionService) Update(ctx context.Context, id string, req models.UpdateTransactionRequest) (*models.Transaction, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", *req.Date, err)
		}
		t.Date = date
	}
	if req.Merchant != nil {
		t.MerchantRaw = *req.Merchant
		t.MerchantNormalized = NormalizeMerchant(*req.Merchant)
	}
	if req.AmountMinor != nil {
		t.AmountMinor = *req.AmountMinor
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.ClearInstallments {
		t.CurrentInstallment = nil
		t.TotalInstallments = nil
	} else if req.CurrentInstallment != nil || req.TotalInstallments != nil {
		t.CurrentInstallment = req.CurrentInstallment
		t.TotalInstallments = req.TotalInstallments
		if err := t.ValidateInstallments(); err != nil {
			return nil, err
		}
	}
	t.UpdatedAt = time.Now()

	query := `
		UPDATE transactions
		SET date = $1, merchant_raw = $2, merchant_normalized = $3,
		    amount_minor = $4, category = $5,
		    current_installment = $6, total_installments = $7, updated_at = $8
		WHERE id = $9
	`
	if _, err := s.db.ExecContext(ctx, query,
		t.Date, t.MerchantRaw, t.MerchantNormalized, t.AmountMinor, t.Category,
		t.CurrentInstallment, t.TotalInstallments, t.UpdatedAt, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// AverageMonthlySpend computes the historical average of confirmed spending
// per month, used as the default affordability ceiling base. Refunds
// (negative amounts) reduce the month they were booked in.
func (s *TransactionService) AverageMonthlySpend(ctx context.Context) (int64, error) {
	query := `
		SELECT COALESCE(AVG(monthly_total), 0) FROM (
			SELECT SUM(amount_minor) AS monthly_total
			FROM transactions
			WHERE status = 'confirmed'
			GROUP BY date_trunc('month', date)
		) months
	`
	var avg float64
	if err := s.db.QueryRowContext(ctx, query).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to compute monthly average: %w", err)
	}
	return int64(avg), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.Date, &t.MerchantRaw, &t.MerchantNormalized, &t.AmountMinor,
		&t.Category, &t.AlternateCategory,
		&t.CurrentInstallment, &t.TotalInstallments,
		&t.Origin, &t.Status, &t.RelatedTransactionID, &t.OriginalFreeText,
		&t.Note, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
