package core

import "sort"

// MaxRecommendations caps the number of suggested labels.
const MaxRecommendations = 3

// Totals summarises the transaction history for the receipts view.
type Totals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

// ComputeTotals sums amounts per transaction type.
func ComputeTotals(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			t.Income += tx.Amount
		case Expense:
			t.Expense += tx.Amount
		}
	}
	t.Balance = t.Income - t.Expense
	return t
}

// Recommend returns at most MaxRecommendations dictionary entries whose
// price range contains amount, closest range midpoint first. Entries at the
// same distance keep their dictionary order. A zero amount recommends nothing.
func Recommend(dict []RecommendationItem, amount int64) []RecommendationItem {
	if amount == 0 {
		return []RecommendationItem{}
	}
	out := make([]RecommendationItem, 0, len(dict))
	for _, item := range dict {
		if item.Contains(amount) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return distance(amount, out[i]) < distance(amount, out[j])
	})
	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}

func distance(amount int64, item RecommendationItem) int64 {
	d := amount - item.Midpoint()
	if d < 0 {
		return -d
	}
	return d
}

// SortByTimestampDesc orders transactions newest first. Equal timestamps
// keep their relative order.
func SortByTimestampDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp > txs[j].Timestamp
	})
}
