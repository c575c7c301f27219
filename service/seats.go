package service

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"studio-booking-cli/model"
)

// UnlabeledRow collects seats whose label cannot be parsed.
const UnlabeledRow = "?"

var ErrInvalidSeatLabel = errors.New("invalid seat label")

// ParseSeatLabel splits a label like "C12" or "AA3" into its row letters
// (upper-cased) and column number.
func ParseSeatLabel(label string) (string, int, error) {
	label = strings.TrimSpace(label)
	split := 0
	for split < len(label) && isASCIILetter(label[split]) {
		split++
	}
	if split == 0 || split == len(label) {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidSeatLabel, label)
	}
	digits := label[split:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", 0, fmt.Errorf("%w: %q", ErrInvalidSeatLabel, label)
		}
	}
	col, err := strconv.Atoi(digits)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidSeatLabel, label)
	}
	return strings.ToUpper(label[:split]), col, nil
}

// GroupSeatsByRow groups seats into display rows. Rows are ordered A..Z then
// AA..ZZ, seats within a row by column. Seats with unparseable labels end up
// in a trailing UnlabeledRow sorted by label.
func GroupSeatsByRow(seats []model.Seat) []model.SeatRow {
	type parsed struct {
		seat model.Seat
		col  int
	}
	byRow := map[string][]parsed{}
	var unlabeled []model.Seat

	for _, seat := range seats {
		row, col, err := ParseSeatLabel(seat.Label)
		if err != nil {
			unlabeled = append(unlabeled, seat)
			continue
		}
		byRow[row] = append(byRow[row], parsed{seat: seat, col: col})
	}

	keys := make([]string, 0, len(byRow))
	for k := range byRow {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	rows := make([]model.SeatRow, 0, len(keys)+1)
	for _, key := range keys {
		list := byRow[key]
		sort.SliceStable(list, func(i, j int) bool { return list[i].col < list[j].col })
		row := model.SeatRow{Row: key, Seats: make([]model.Seat, len(list))}
		for i, p := range list {
			row.Seats[i] = p.seat
		}
		rows = append(rows, row)
	}

	if len(unlabeled) > 0 {
		sort.SliceStable(unlabeled, func(i, j int) bool { return unlabeled[i].Label < unlabeled[j].Label })
		rows = append(rows, model.SeatRow{Row: UnlabeledRow, Seats: unlabeled})
	}
	return rows
}

// SeatIndex maps seat ids to seats.
func SeatIndex(seats []model.Seat) map[int64]model.Seat {
	index := make(map[int64]model.Seat, len(seats))
	for _, seat := range seats {
		index[seat.ID] = seat
	}
	return index
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
