package store

import "testing"

func TestBuildSortSkipsUnsortedColumns(t *testing.T) {
	got := BuildSort([]ColumnSort{
		{Field: "name", Order: "ascend", Priority: 1},
		{Field: "weight", Order: "", Priority: 2},
		{Field: "received_at", Order: "descend", Priority: 3},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if got["name"] != "asc" || got["received_at"] != "desc" {
		t.Fatalf("unexpected orders: %v", got)
	}
}

func TestBuildSortDuplicateFieldResolvesToMostSignificant(t *testing.T) {
	got := BuildSort([]ColumnSort{
		{Field: "weight", Order: "desc", Priority: 2},
		{Field: "weight", Order: "asc", Priority: 1},
	})
	if got["weight"] != "asc" {
		t.Fatalf("expected the lower-priority-value column to win, got %v", got)
	}
}

func TestBuildSortEmpty(t *testing.T) {
	if got := BuildSort(nil); len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
	if got := BuildSort([]ColumnSort{{Field: "name"}}); len(got) != 0 {
		t.Fatalf("expected unsorted column dropped, got %v", got)
	}
}
