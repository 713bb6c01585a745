package domain

import "testing"

func TestNewPageClamping(t *testing.T) {
	tests := []struct {
		name       string
		number     int
		totalItems int64
		wantNumber int
		wantPages  int
	}{
		{"first page", 1, 25, 1, 3},
		{"middle page", 2, 25, 2, 3},
		{"last page", 3, 25, 3, 3},
		{"past the end", 99, 25, 3, 3},
		{"zero", 0, 25, 1, 3},
		{"negative", -5, 25, 1, 3},
		{"exact multiple", 2, 20, 2, 2},
		{"empty listing", 1, 0, 1, 1},
		{"empty listing past end", 7, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.number, tt.totalItems)
			if p.Number != tt.wantNumber {
				t.Errorf("Number = %d, want %d", p.Number, tt.wantNumber)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
		})
	}
}

func TestPageNavigation(t *testing.T) {
	first := NewPage(1, 25)
	if first.HasPrev() {
		t.Errorf("first page reports a previous page")
	}
	if !first.HasNext() {
		t.Errorf("first page of three reports no next page")
	}
	if first.Offset() != 0 {
		t.Errorf("first page Offset = %d, want 0", first.Offset())
	}

	last := NewPage(3, 25)
	if !last.HasPrev() {
		t.Errorf("last page reports no previous page")
	}
	if last.HasNext() {
		t.Errorf("last page reports a next page")
	}
	if last.Offset() != 20 {
		t.Errorf("last page Offset = %d, want 20", last.Offset())
	}
}
