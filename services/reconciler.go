package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hogarapp/gastos-api/models"
	"github.com/hogarapp/gastos-api/utils"

	"github.com/google/uuid"
)

var (
	ErrNotProvisional  = errors.New("transaction is not a provisional manual entry")
	ErrNotImported     = errors.New("transaction is not a confirmed imported entry")
	ErrAlreadyMerged   = errors.New("imported transaction already absorbed a manual entry")
	ErrInvalidDecision = errors.New("unknown resolution decision")
)

// UpdateBroadcaster pushes change signals to connected clients. Implemented
// by the WebSocket handler; nil disables notifications.
type UpdateBroadcaster interface {
	Broadcast(updateType, detail string)
}

// ReconcilerService matches provisional manual entries against imported
// statement transactions for one accounting month and applies the resulting
// decisions.
type ReconcilerService struct {
	db           *sql.DB
	transactions *TransactionService
	categories   *CategoryLookup
	broadcaster  UpdateBroadcaster

	mu         sync.Mutex
	monthLocks map[string]*sync.Mutex
}

func NewReconcilerService(db *sql.DB, transactions *TransactionService, categories *CategoryLookup, broadcaster UpdateBroadcaster) *ReconcilerService {
	return &ReconcilerService{
		db:           db,
		transactions: transactions,
		categories:   categories,
		broadcaster:  broadcaster,
		monthLocks:   make(map[string]*sync.Mutex),
	}
}

// lockMonth serializes reconciliation runs per accounting month. Two
// concurrent runs for the same month would race on the same provisional rows;
// distinct months share no state and proceed in parallel.
func (s *ReconcilerService) lockMonth(month string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.monthLocks[month]; !ok {
		s.monthLocks[month] = &sync.Mutex{}
	}
	return s.monthLocks[month]
}

// classifyBatch partitions provisional entries into auto, suggested and
// unmatched tiers with a greedy single pass in input order.
//
// An auto match claims its imported record so no second provisional entry can
// auto-match it. A suggested match does NOT claim: two provisional entries may
// suggest the same imported record, and the review step surfaces that instead
// of guessing which one wins.
func classifyBatch(provisional, imported []models.Transaction) models.ReconciliationResult {
	result := models.ReconciliationResult{
		AutoMatches:       []models.MatchCandidate{},
		SuggestedMatches:  []models.MatchCandidate{},
		Unmatched:         []models.UnmatchedEntry{},
		UnclaimedImported: []models.Transaction{},
	}

	autoClaimed := make(map[string]bool)
	everBest := make(map[string]bool)

	for _, p := range provisional {
		var best *models.MatchCandidate
		for _, c := range imported {
			if autoClaimed[c.ID] {
				continue
			}
			candidate := ScoreMatch(p, c)
			if best == nil || candidate.Score > best.Score {
				cc := candidate
				best = &cc
			}
		}

		if best == nil {
			result.Unmatched = append(result.Unmatched, models.UnmatchedEntry{Provisional: p})
			continue
		}
		everBest[best.Imported.ID] = true

		switch {
		case best.Score >= models.AutoMatchThreshold:
			autoClaimed[best.Imported.ID] = true
			result.AutoMatches = append(result.AutoMatches, *best)
		case best.Score >= models.SuggestedMatchThreshold:
			result.SuggestedMatches = append(result.SuggestedMatches, *best)
		default:
			result.Unmatched = append(result.Unmatched, models.UnmatchedEntry{
				Provisional: p,
				BestScore:   best.Score,
			})
		}
	}

	for _, c := range imported {
		if !everBest[c.ID] {
			result.UnclaimedImported = append(result.UnclaimedImported, c)
		}
	}

	return result
}

// Classify fetches both sides of the given accounting month and runs the
// matching pass. A month with no imported batch is not an error: every
// provisional entry simply lands in unmatched.
func (s *ReconcilerService) Classify(ctx context.Context, month string) (*models.RunSummary, error) {
	provisional, err := s.transactions.ListByMonth(ctx, month, models.StatusProvisional, models.OriginManual)
	if err != nil {
		return nil, err
	}
	imported, err := s.transactions.ListByMonth(ctx, month, models.StatusConfirmed, models.OriginImported)
	if err != nil {
		return nil, err
	}

	return &models.RunSummary{
		Month:         month,
		TotalManual:   len(provisional),
		TotalImported: len(imported),
		Result:        classifyBatch(provisional, imported),
	}, nil
}

// Merge resolves a matched pair: the imported record survives, absorbs the
// manual record's free text and a back-reference to its id, and keeps the
// manual category as an alternate when the two disagree. The manual record is
// deleted. Safe to re-run: an already-migrated pair returns a typed error
// instead of corrupting anything.
func (s *ReconcilerService) Merge(ctx context.Context, manualID, importedID string) error {
	manual, err := s.transactions.GetByID(ctx, manualID)
	if err != nil {
		return err
	}
	if manual.Status != models.StatusProvisional || manual.Origin != models.OriginManual {
		return ErrNotProvisional
	}

	imported, err := s.transactions.GetByID(ctx, importedID)
	if err != nil {
		return err
	}
	if imported.Origin != models.OriginImported {
		return ErrNotImported
	}
	// An imported record carries a back-reference once it absorbed a manual
	// entry; a second merge would overwrite that audit trail.
	if imported.RelatedTransactionID != nil {
		return ErrAlreadyMerged
	}

	alternate := imported.AlternateCategory
	if manual.Category != "" && manual.Category != imported.Category {
		alternate = manual.Category
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		query := `
			UPDATE transactions
			SET status = $1, origin = $2, related_transaction_id = $3,
			    original_free_text = $4, alternate_category = NULLIF($5, ''),
			    updated_at = $6
			WHERE id = $7
		`
		if _, err := tx.ExecContext(ctx, query,
			models.StatusConfirmed, models.OriginImported, manual.ID,
			manual.OriginalFreeText, alternate, time.Now(), imported.ID,
		); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, manual.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("merge %s into %s: %w", manualID, importedID, err)
	}

	// A differing manual category is a user correction worth learning.
	if s.categories != nil && manual.Category != "" && manual.Category != imported.Category {
		s.categories.Learn(ctx, imported.MerchantRaw, manual.Category)
	}

	return nil
}

// KeepUnmatched confirms a manual entry that has no statement counterpart
// (typically a cash payment). The origin stays manual and the reason is kept
// as a note.
func (s *ReconcilerService) KeepUnmatched(ctx context.Context, manualID, reason string) error {
	manual, err := s.transactions.GetByID(ctx, manualID)
	if err != nil {
		return err
	}
	if manual.Status != models.StatusProvisional || manual.Origin != models.OriginManual {
		return ErrNotProvisional
	}

	if reason == "" {
		reason = "not on statement"
	}
	query := `
		UPDATE transactions
		SET status = $1, note = $2, updated_at = $3
		WHERE id = $4
	`
	if _, err := s.db.ExecContext(ctx, query, models.StatusConfirmed, reason, time.Now(), manualID); err != nil {
		return fmt.Errorf("keep unmatched %s: %w", manualID, err)
	}
	return nil
}

// Discard deletes a provisional entry judged to be a data-entry error.
func (s *ReconcilerService) Discard(ctx context.Context, manualID string) error {
	manual, err := s.transactions.GetByID(ctx, manualID)
	if err != nil {
		return err
	}
	if manual.Status != models.StatusProvisional || manual.Origin != models.OriginManual {
		return ErrNotProvisional
	}
	return s.transactions.Delete(ctx, manualID)
}

// Resolve applies a reviewed decision list. Each item commits on its own; a
// failure stops the loop and is surfaced, leaving earlier decisions applied.
// There is no batch rollback, so callers must treat a failed run as partially
// applied and re-run (the per-item status checks make that safe).
func (s *ReconcilerService) Resolve(ctx context.Context, items []models.ResolutionItem) (int, error) {
	applied := 0
	for i, item := range items {
		var err error
		switch item.Decision {
		case models.DecisionMerge:
			if item.ImportedID == "" {
				err = fmt.Errorf("item %d: merge requires imported_id", i)
			} else {
				err = s.Merge(ctx, item.ManualID, item.ImportedID)
			}
		case models.DecisionKeep:
			err = s.KeepUnmatched(ctx, item.ManualID, item.Reason)
		case models.DecisionDiscard:
			err = s.Discard(ctx, item.ManualID)
		default:
			err = fmt.Errorf("item %d: %w: %q", i, ErrInvalidDecision, item.Decision)
		}
		if err != nil {
			return applied, fmt.Errorf("resolution stopped at item %d of %d: %w", i, len(items), err)
		}
		applied++
	}

	if s.broadcaster != nil && applied > 0 {
		s.broadcaster.Broadcast("transactions_updated", fmt.Sprintf("%d resolutions applied", applied))
	}
	return applied, nil
}

// defaultDecisions expands a classification into the decision list Run
// applies. Every auto match merges and takes its imported record. A suggested
// match merges only when its imported record is still free: suggestions do not
// claim during classification, so one imported record can back an auto match
// and a suggestion (or two suggestions) at once, and only the first pairing
// may merge. The losers and the unmatched entries are kept with a note.
func defaultDecisions(result models.ReconciliationResult) []models.ResolutionItem {
	items := make([]models.ResolutionItem, 0,
		len(result.AutoMatches)+len(result.SuggestedMatches)+len(result.Unmatched))

	merged := make(map[string]bool)
	for _, m := range result.AutoMatches {
		merged[m.Imported.ID] = true
		items = append(items, models.ResolutionItem{
			ManualID:   m.Provisional.ID,
			ImportedID: m.Imported.ID,
			Decision:   models.DecisionMerge,
		})
	}
	for _, m := range result.SuggestedMatches {
		if merged[m.Imported.ID] {
			items = append(items, models.ResolutionItem{
				ManualID: m.Provisional.ID,
				Decision: models.DecisionKeep,
				Reason:   "ambiguous statement match",
			})
			continue
		}
		merged[m.Imported.ID] = true
		items = append(items, models.ResolutionItem{
			ManualID:   m.Provisional.ID,
			ImportedID: m.Imported.ID,
			Decision:   models.DecisionMerge,
		})
	}
	for _, u := range result.Unmatched {
		items = append(items, models.ResolutionItem{
			ManualID: u.Provisional.ID,
			Decision: models.DecisionKeep,
			Reason:   "not on statement",
		})
	}
	return items
}

// Run classifies a month and applies the default decisions: merge every auto
// match, merge every suggested pairing, keep unmatched entries annotated. The
// run is serialized per month and recorded in reconciliation_runs.
func (s *ReconcilerService) Run(ctx context.Context, month string) (*models.RunSummary, error) {
	lock := s.lockMonth(month)
	lock.Lock()
	defer lock.Unlock()

	summary, err := s.Classify(ctx, month)
	if err != nil {
		return nil, err
	}

	for _, item := range defaultDecisions(summary.Result) {
		var err error
		switch item.Decision {
		case models.DecisionMerge:
			err = s.Merge(ctx, item.ManualID, item.ImportedID)
		case models.DecisionKeep:
			err = s.KeepUnmatched(ctx, item.ManualID, item.Reason)
		}
		if err != nil {
			return summary, fmt.Errorf("default %s of %s failed: %w", item.Decision, item.ManualID, err)
		}
	}

	s.recordRun(ctx, summary)

	utils.SafeInfo("Reconciliation %s: %d auto, %d suggested, %d unmatched (%d manual vs %d imported)",
		month, len(summary.Result.AutoMatches), len(summary.Result.SuggestedMatches),
		len(summary.Result.Unmatched), summary.TotalManual, summary.TotalImported)

	if s.broadcaster != nil {
		s.broadcaster.Broadcast("reconciliation_completed", month)
	}

	return summary, nil
}

// recordRun appends an audit row; failures only warn, the run itself already
// succeeded.
func (s *ReconcilerService) recordRun(ctx context.Context, summary *models.RunSummary) {
	query := `
		INSERT INTO reconciliation_runs
			(id, month, total_manual, total_imported, auto_matches, suggested_matches, unmatched, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New().String(), summary.Month, summary.TotalManual, summary.TotalImported,
		len(summary.Result.AutoMatches), len(summary.Result.SuggestedMatches),
		len(summary.Result.Unmatched), time.Now(),
	)
	if err != nil {
		utils.SafeWarn("Failed to record reconciliation run for %s: %v", summary.Month, err)
	}
}
