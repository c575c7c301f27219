package service

import (
	"errors"
	"testing"

	"studio-booking-cli/model"
)

func TestParseSeatLabel(t *testing.T) {
	cases := []struct {
		label string
		row   string
		col   int
		ok    bool
	}{
		{"C12", "C", 12, true},
		{" a7 ", "A", 7, true},
		{"AA1", "AA", 1, true},
		{"ab10", "AB", 10, true},
		{"12", "", 0, false},
		{"A", "", 0, false},
		{"A1B", "", 0, false},
		{"", "", 0, false},
		{"Á1", "", 0, false},
	}
	for _, tc := range cases {
		row, col, err := ParseSeatLabel(tc.label)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tc.label, err)
			}
			if row != tc.row || col != tc.col {
				t.Fatalf("%q: expected %s/%d, got %s/%d", tc.label, tc.row, tc.col, row, col)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidSeatLabel) {
			t.Fatalf("%q: expected ErrInvalidSeatLabel, got %v", tc.label, err)
		}
	}
}

func TestGroupSeatsByRow_SortsRowsAndColumns(t *testing.T) {
	seats := []model.Seat{
		{ID: 1, Label: "B10"},
		{ID: 2, Label: "A2"},
		{ID: 3, Label: "B2"},
		{ID: 4, Label: "AA1"},
		{ID: 5, Label: "A1"},
		{ID: 6, Label: "bogus"},
		{ID: 7, Label: "B1"},
	}

	rows := GroupSeatsByRow(seats)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d: %+v", len(rows), rows)
	}

	want := []struct {
		row string
		ids []int64
	}{
		{"A", []int64{5, 2}},
		{"B", []int64{7, 3, 1}},
		{"AA", []int64{4}},
		{UnlabeledRow, []int64{6}},
	}
	for i, w := range want {
		if rows[i].Row != w.row {
			t.Fatalf("row %d: expected %s, got %s", i, w.row, rows[i].Row)
		}
		if len(rows[i].Seats) != len(w.ids) {
			t.Fatalf("row %s: expected %d seats, got %d", w.row, len(w.ids), len(rows[i].Seats))
		}
		for j, id := range w.ids {
			if rows[i].Seats[j].ID != id {
				t.Fatalf("row %s seat %d: expected id %d, got %d", w.row, j, id, rows[i].Seats[j].ID)
			}
		}
	}
}

func TestGroupSeatsByRow_Empty(t *testing.T) {
	if rows := GroupSeatsByRow(nil); len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}
