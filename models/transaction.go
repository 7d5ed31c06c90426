package models

import (
	"errors"
	"time"
)

// Transaction origins
const (
	OriginManual   = "manual"
	OriginImported = "imported"
)

// Transaction statuses
const (
	StatusProvisional = "provisional"
	StatusConfirmed   = "confirmed"
)

// Transaction represents a single expense movement. Amounts are stored in
// minor units (centavos), negative for refunds.
type Transaction struct {
	ID                   string    `json:"id"`
	Date                 time.Time `json:"date"`
	MerchantRaw          string    `json:"merchant_raw"`
	MerchantNormalized   string    `json:"merchant_normalized"`
	AmountMinor          int64     `json:"amount_minor"`
	Category             string    `json:"category"`
	AlternateCategory    string    `json:"alternate_category,omitempty"`
	CurrentInstallment   *int      `json:"current_installment,omitempty"`
	TotalInstallments    *int      `json:"total_installments,omitempty"`
	Origin               string    `json:"origin"`
	Status               string    `json:"status"`
	RelatedTransactionID *string   `json:"related_transaction_id,omitempty"`
	OriginalFreeText     *string   `json:"original_free_text,omitempty"`
	Note                 string    `json:"note,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// IsSpot reports whether this is a single-payment transaction. A 1/1
// installment pair counts as spot too.
func (t *Transaction) IsSpot() bool {
	if t.CurrentInstallment == nil || t.TotalInstallments == nil {
		return true
	}
	return *t.CurrentInstallment == 1 && *t.TotalInstallments == 1
}

var (
	ErrInstallmentFieldsMismatch = errors.New("current and total installments must be both set or both empty")
	ErrInstallmentOutOfRange     = errors.New("current installment must be between 1 and total installments")
)

// ValidateInstallments enforces the both-null-or-both-set contract.
func (t *Transaction) ValidateInstallments() error {
	if (t.CurrentInstallment == nil) != (t.TotalInstallments == nil) {
		return ErrInstallmentFieldsMismatch
	}
	if t.CurrentInstallment == nil {
		return nil
	}
	if *t.CurrentInstallment < 1 || *t.TotalInstallments < 1 || *t.CurrentInstallment > *t.TotalInstallments {
		return ErrInstallmentOutOfRange
	}
	return nil
}

type CreateTransactionRequest struct {
	Date               string `json:"date" binding:"required"`
	Merchant           string `json:"merchant" binding:"required"`
	AmountMinor        int64  `json:"amount_minor" binding:"required"`
	Category           string `json:"category"`
	CurrentInstallment *int   `json:"current_installment"`
	TotalInstallments  *int   `json:"total_installments"`
	FreeText           string `json:"free_text"`
}

type UpdateTransactionRequest struct {
	Date               *string `json:"date"`
	Merchant           *string `json:"merchant"`
	AmountMinor        *int64  `json:"amount_minor"`
	Category           *string `json:"category"`
	CurrentInstallment *int    `json:"current_installment"`
	TotalInstallments  *int    `json:"total_installments"`
	// ClearInstallments turns the record back into a spot purchase. Needed
	// because omitting both installment fields means "leave them alone".
	ClearInstallments bool `json:"clear_installments"`
}

// ImportRow is one statement line already parsed upstream.
type ImportRow struct {
	Date               string `json:"date" binding:"required"`
	Merchant           string `json:"merchant" binding:"required"`
	AmountMinor        int64  `json:"amount_minor" binding:"required"`
	Category           string `json:"category"`
	CurrentInstallment *int   `json:"current_installment"`
	TotalInstallments  *int   `json:"total_installments"`
}

type ImportBatchRequest struct {
	Month string      `json:"month" binding:"required"`
	Rows  []ImportRow `json:"rows" binding:"required"`
}
