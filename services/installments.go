package services

import (
	"context"
	"sort"

	"github.com/hogarapp/gastos-api/models"
)

// InstallmentService reconstructs multi-period purchases from the flat
// transaction history.
type InstallmentService struct {
	transactions *TransactionService
}

func NewInstallmentService(transactions *TransactionService) *InstallmentService {
	return &InstallmentService{transactions: transactions}
}

type obligationKey struct {
	merchant string
	amount   int64
	total    int
}

// GroupObligations rebuilds installment purchases from history. A purchase in
// N cuotas leaves one transaction per billing period, so the furthest
// current_installment seen is how far the purchase has been charged. Only
// groups with periods still pending are returned, largest per-period amount
// first.
func GroupObligations(history []models.Transaction) []models.InstallmentObligation {
	groups := make(map[obligationKey]*models.InstallmentObligation)
	var order []obligationKey

	for _, t := range history {
		if t.CurrentInstallment == nil || t.TotalInstallments == nil {
			continue
		}
		current, total := *t.CurrentInstallment, *t.TotalInstallments
		if current < 1 || total < 1 || current > total {
			continue
		}
		if current == 1 && total == 1 {
			continue // spot purchase dressed as an installment
		}

		merchant := t.MerchantNormalized
		if merchant == "" {
			merchant = NormalizeMerchant(t.MerchantRaw)
		}
		key := obligationKey{merchant: merchant, amount: t.AmountMinor, total: total}

		g, ok := groups[key]
		if !ok {
			g = &models.InstallmentObligation{
				Merchant:             merchant,
				PerPeriodAmountMinor: t.AmountMinor,
				TotalInstallments:    total,
				TotalAmountMinor:     t.AmountMinor * int64(total),
			}
			groups[key] = g
			order = append(order, key)
		}
		if current > g.FurthestInstallment {
			g.FurthestInstallment = current
		}
	}

	var active []models.InstallmentObligation
	for _, key := range order {
		g := groups[key]
		g.RemainingInstallments = g.TotalInstallments - g.FurthestInstallment
		if g.RemainingInstallments > 0 {
			active = append(active, *g)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].PerPeriodAmountMinor > active[j].PerPeriodAmountMinor
	})
	return active
}

// ActiveObligations fetches the full history and groups it.
func (s *InstallmentService) ActiveObligations(ctx context.Context) ([]models.InstallmentObligation, error) {
	history, err := s.transactions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return GroupObligations(history), nil
}
