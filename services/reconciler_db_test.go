package services

import (
	"context"
	"testing"

	"github.com/hogarapp/gastos-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var txTestColumns = []string{
	"id", "date", "merchant_raw", "merchant_normalized", "amount_minor", "category",
	"alternate_category", "current_installment", "total_installments",
	"origin", "status", "related_transaction_id", "original_free_text", "note",
	"created_at", "updated_at",
}

func newMockReconciler(t *testing.T) (*ReconcilerService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	transactions := NewTransactionService(db, nil)
	return NewReconcilerService(db, transactions, nil, nil), mock
}

func storedTx(id, merchant string, amountMinor int64, date, origin, status string) models.Transaction {
	out := tx(id, merchant, amountMinor, date)
	out.MerchantNormalized = NormalizeMerchant(merchant)
	out.Origin = origin
	out.Status = status
	out.CreatedAt = day(date)
	out.UpdatedAt = day(date)
	return out
}

func txRow(t models.Transaction) *sqlmock.Rows {
	var related, freeText interface{}
	if t.RelatedTransactionID != nil {
		related = *t.RelatedTransactionID
	}
	if t.OriginalFreeText != nil {
		freeText = *t.OriginalFreeText
	}
	return sqlmock.NewRows(txTestColumns).AddRow(
		t.ID, t.Date, t.MerchantRaw, t.MerchantNormalized, t.AmountMinor, t.Category,
		t.AlternateCategory, t.CurrentInstallment, t.TotalInstallments,
		t.Origin, t.Status, related, freeText, t.Note,
		t.CreatedAt, t.UpdatedAt,
	)
}

func expectGetByID(mock sqlmock.Sqlmock, id string, rows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT (.+) FROM transactions WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(rows)
}

func TestMerge_WritesBackReferenceAndDeletesManual(t *testing.T) {
	s, mock := newMockReconciler(t)

	manual := storedTx("m-1", "Farmacity", 10000, "2024-03-05", models.OriginManual, models.StatusProvisional)
	freeText := "remedios farmacity"
	manual.OriginalFreeText = &freeText
	manual.Category = "HEALTH"
	imported := storedTx("c-1", "FARMACITY SUC 22", 10000, "2024-03-06", models.OriginImported, models.StatusConfirmed)
	imported.Category = "HEALTH"

	expectGetByID(mock, "m-1", txRow(manual))
	expectGetByID(mock, "c-1", txRow(imported))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE transactions SET status = \$1`).
		WithArgs(models.StatusConfirmed, models.OriginImported, "m-1", freeText, "", sqlmock.AnyArg(), "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM transactions WHERE id = \$1`).
		WithArgs("m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Merge(context.Background(), "m-1", "c-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_AlreadyMergedImportedIsRejected(t *testing.T) {
	s, mock := newMockReconciler(t)

	manual := storedTx("m-2", "Coto", 31000, "2024-03-08", models.OriginManual, models.StatusProvisional)
	imported := storedTx("c-1", "COTO SUC 12", 31000, "2024-03-08", models.OriginImported, models.StatusConfirmed)
	prior := "m-1"
	imported.RelatedTransactionID = &prior

	expectGetByID(mock, "m-2", txRow(manual))
	expectGetByID(mock, "c-1", txRow(imported))

	err := s.Merge(context.Background(), "m-2", "c-1")

	// No transaction may start: a second merge would overwrite the
	// back-reference and free text the first one recorded.
	assert.ErrorIs(t, err, ErrAlreadyMerged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_ConfirmedManualIsRejected(t *testing.T) {
	s, mock := newMockReconciler(t)

	manual := storedTx("m-1", "Coto", 31000, "2024-03-08", models.OriginManual, models.StatusConfirmed)
	expectGetByID(mock, "m-1", txRow(manual))

	err := s.Merge(context.Background(), "m-1", "c-1")

	assert.ErrorIs(t, err, ErrNotProvisional)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_MissingManualIsRejected(t *testing.T) {
	s, mock := newMockReconciler(t)

	expectGetByID(mock, "m-gone", sqlmock.NewRows(txTestColumns))

	err := s.Merge(context.Background(), "m-gone", "c-1")

	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_ManualTargetIsRejected(t *testing.T) {
	s, mock := newMockReconciler(t)

	manual := storedTx("m-1", "Coto", 31000, "2024-03-08", models.OriginManual, models.StatusProvisional)
	other := storedTx("m-2", "Coto", 31000, "2024-03-08", models.OriginManual, models.StatusConfirmed)

	expectGetByID(mock, "m-1", txRow(manual))
	expectGetByID(mock, "m-2", txRow(other))

	err := s.Merge(context.Background(), "m-1", "m-2")

	assert.ErrorIs(t, err, ErrNotImported)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeepUnmatched_ConfirmedEntryIsRejected(t *testing.T) {
	s, mock := newMockReconciler(t)

	manual := storedTx("m-1", "Kiosco", 900, "2024-03-20", models.OriginManual, models.StatusConfirmed)
	expectGetByID(mock, "m-1", txRow(manual))

	err := s.KeepUnmatched(context.Background(), "m-1", "")

	assert.ErrorIs(t, err, ErrNotProvisional)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscard_ConfirmedEntryIsRejected(t *testing.T) {
	s, mock := newMockReconciler(t)

	imported := storedTx("c-1", "Coto", 31000, "2024-03-08", models.OriginImported, models.StatusConfirmed)
	expectGetByID(mock, "c-1", txRow(imported))

	err := s.Discard(context.Background(), "c-1")

	assert.ErrorIs(t, err, ErrNotProvisional)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeepUnmatched_DefaultReason(t *testing.T) {
	s, mock := newMockReconciler(t)

	manual := storedTx("m-1", "Kiosco", 900, "2024-03-20", models.OriginManual, models.StatusProvisional)
	expectGetByID(mock, "m-1", txRow(manual))
	mock.ExpectExec(`UPDATE transactions SET status = \$1, note = \$2`).
		WithArgs(models.StatusConfirmed, "not on statement", sqlmock.AnyArg(), "m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.KeepUnmatched(context.Background(), "m-1", "")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
