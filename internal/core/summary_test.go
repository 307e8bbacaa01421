package core

import "testing"

func names(items []RecommendationItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestRecommend(t *testing.T) {
	dict := []RecommendationItem{
		{ID: "a", Name: "A", MinPrice: 3000, MaxPrice: 6000},
		{ID: "b", Name: "B", MinPrice: 8000, MaxPrice: 15000},
	}

	got := Recommend(dict, 5000)
	if len(got) != 1 || got[0].Name != "A" {
		t.Fatalf("expected [A], got %v", names(got))
	}

	if got := Recommend(dict, 0); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice for 0, got %v", got)
	}

	if got := Recommend(dict, 7000); len(got) != 0 {
		t.Fatalf("expected no match for 7000, got %v", names(got))
	}
}

func TestRecommendRanksByMidpointAndCaps(t *testing.T) {
	dict := []RecommendationItem{
		{Name: "wide", MinPrice: 1000, MaxPrice: 50000},  // mid 25500
		{Name: "near", MinPrice: 4000, MaxPrice: 6000},   // mid 5000
		{Name: "mid", MinPrice: 3000, MaxPrice: 9000},    // mid 6000
		{Name: "low", MinPrice: 1000, MaxPrice: 5000},    // mid 3000
		{Name: "tie", MinPrice: 3000, MaxPrice: 9000},    // mid 6000
		{Name: "miss", MinPrice: 6000, MaxPrice: 7000},   // out of range
	}
	got := names(Recommend(dict, 5000))
	want := []string{"near", "mid", "tie"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestComputeTotals(t *testing.T) {
	txs := []Transaction{
		{Amount: 4500, Type: Expense},
		{Amount: 3000000, Type: Income},
		{Amount: 1500, Type: Expense},
	}
	got := ComputeTotals(txs)
	if got.Income != 3000000 || got.Expense != 6000 || got.Balance != 2994000 {
		t.Fatalf("unexpected totals %+v", got)
	}
	if empty := ComputeTotals(nil); empty != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", empty)
	}
}

func TestSortByTimestampDesc(t *testing.T) {
	txs := []Transaction{
		{ID: "old", Timestamp: 1},
		{ID: "new", Timestamp: 3},
		{ID: "mid-a", Timestamp: 2},
		{ID: "mid-b", Timestamp: 2},
	}
	SortByTimestampDesc(txs)
	order := []string{"new", "mid-a", "mid-b", "old"}
	for i, id := range order {
		if txs[i].ID != id {
			t.Fatalf("position %d expected %s, got %s", i, id, txs[i].ID)
		}
	}
}
