package models

// Score thresholds and weights for statement matching.
const (
	AutoMatchThreshold      = 85
	SuggestedMatchThreshold = 70

	MerchantMaxPoints = 70
	AmountMaxPoints   = 25
	DateMaxPoints     = 5
)

// ScoreBreakdown explains how a match score was built.
type ScoreBreakdown struct {
	MerchantPoints int `json:"merchant_points"`
	AmountPoints   int `json:"amount_points"`
	DatePoints     int `json:"date_points"`
}

// MatchCandidate pairs one provisional manual transaction with one imported
// transaction and the score of that pairing.
type MatchCandidate struct {
	Provisional Transaction    `json:"provisional"`
	Imported    Transaction    `json:"imported"`
	Score       int            `json:"score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
}

// UnmatchedEntry is a provisional transaction whose best candidate scored
// below the suggestion threshold (score is 0 when there were no candidates).
type UnmatchedEntry struct {
	Provisional Transaction `json:"provisional"`
	BestScore   int         `json:"best_score"`
}

// ReconciliationResult partitions the provisional side into three tiers.
// Imported records may legitimately appear in more than one suggested entry;
// the resolve step surfaces that instead of deduping.
type ReconciliationResult struct {
	AutoMatches       []MatchCandidate `json:"auto_matches"`
	SuggestedMatches  []MatchCandidate `json:"suggested_matches"`
	Unmatched         []UnmatchedEntry `json:"unmatched"`
	UnclaimedImported []Transaction    `json:"unclaimed_imported"`
}

// Resolution decisions
const (
	DecisionMerge   = "merge"
	DecisionKeep    = "keep"
	DecisionDiscard = "discard"
)

type ResolutionItem struct {
	ManualID   string `json:"manual_id" binding:"required"`
	ImportedID string `json:"imported_id"`
	Decision   string `json:"decision" binding:"required"`
	Reason     string `json:"reason"`
}

type ResolveRequest struct {
	Items []ResolutionItem `json:"items" binding:"required"`
}

// RunSummary is returned to the caller after a reconciliation pass so the
// frontend can decide whether to open the review screen (only when
// TotalManual > 0).
type RunSummary struct {
	Month         string               `json:"month"`
	TotalManual   int                  `json:"total_manual"`
	TotalImported int                  `json:"total_imported"`
	Result        ReconciliationResult `json:"result"`
}
