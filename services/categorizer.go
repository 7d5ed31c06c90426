package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hogarapp/gastos-api/utils"
)

// CategoryLookup resolves a merchant label to an expense category. It is the
// explicit read/write service for learned label mappings: static keyword
// rules first, then the label_mappings table, defaulting to OTHER. Resolution
// decisions feed mappings back through Learn.
type CategoryLookup struct {
	db *sql.DB
}

func NewCategoryLookup(db *sql.DB) *CategoryLookup {
	return &CategoryLookup{db: db}
}

// --- STATIC DICTIONARY ---
var staticRules = map[string]string{
	// SUPERMERCADOS
	"coto": "FOOD", "carrefour": "FOOD", "dia": "FOOD", "disco": "FOOD",
	"jumbo": "FOOD", "vea": "FOOD", "la anonima": "FOOD",

	// TRANSPORTE
	"uber": "TRANSPORT", "cabify": "TRANSPORT", "didi": "TRANSPORT",
	"ypf": "TRANSPORT", "shell": "TRANSPORT", "axion": "TRANSPORT", "sube": "TRANSPORT",

	// SERVICIOS
	"edenor": "UTILITIES", "edesur": "UTILITIES", "metrogas": "UTILITIES",
	"aysa": "UTILITIES", "telecom": "UTILITIES", "personal": "UTILITIES",
	"movistar": "UTILITIES", "claro": "UTILITIES", "fibertel": "UTILITIES",

	// OCIO
	"netflix": "LEISURE", "spotify": "LEISURE", "disney": "LEISURE",
	"hbo": "LEISURE", "steam": "LEISURE", "cinemark": "LEISURE",

	// COMIDA AFUERA
	"rappi": "DELIVERY", "pedidosya": "DELIVERY", "mcdonalds": "DELIVERY",
	"burger king": "DELIVERY", "mostaza": "DELIVERY",

	// COMPRAS
	"mercado libre": "SHOPPING", "mercadolibre": "SHOPPING", "amazon": "SHOPPING",
	"fravega": "SHOPPING", "garbarino": "SHOPPING",

	// SALUD
	"farmacity": "HEALTH", "osde": "HEALTH", "swiss medical": "HEALTH",
}

// Lookup determines the category for a raw merchant label.
func (s *CategoryLookup) Lookup(ctx context.Context, rawLabel string) (string, error) {
	normalized := NormalizeMerchant(rawLabel)
	if normalized == "" {
		return "OTHER", nil
	}

	if category, exists := staticRules[normalized]; exists {
		return category, nil
	}
	for key, cat := range staticRules {
		if strings.Contains(normalized, key) {
			return cat, nil
		}
	}

	var dbCategory string
	err := s.db.QueryRowContext(ctx,
		"SELECT category FROM label_mappings WHERE normalized_label = $1",
		normalized).Scan(&dbCategory)
	if err == nil {
		return dbCategory, nil
	}
	if err != sql.ErrNoRows {
		return "OTHER", err
	}

	return "OTHER", nil
}

// Learn records a user-confirmed label → category mapping so future imports
// of the same merchant categorize without review.
func (s *CategoryLookup) Learn(ctx context.Context, rawLabel, category string) error {
	normalized := NormalizeMerchant(rawLabel)
	if normalized == "" || category == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO label_mappings (normalized_label, category, source)
		VALUES ($1, $2, 'USER')
		ON CONFLICT (normalized_label) DO UPDATE SET category = EXCLUDED.category, source = 'USER'
	`, normalized, category)
	if err != nil {
		utils.SafeWarn("Failed to learn mapping for '%s': %v", utils.MaskMerchant(normalized), err)
	}
	return err
}
