package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"studio-booking-cli/model"
	"studio-booking-cli/store"
)

type studioItem struct {
	studio model.Studio
	hidden bool
}

func (s studioItem) Title() string {
	if s.hidden {
		return s.studio.Name + " (hidden)"
	}
	return s.studio.Name
}

func (s studioItem) Description() string {
	if s.studio.TotalSeats > 0 {
		return fmt.Sprintf("Studio #%d • %d seats", s.studio.ID, s.studio.TotalSeats)
	}
	return fmt.Sprintf("Studio #%d", s.studio.ID)
}

func (s studioItem) FilterValue() string {
	return strings.ToLower(s.studio.Name)
}

type bookingItem struct {
	code       string
	studio     string
	seats      string
	status     model.BookingStatus
	bookedType model.BookingType
	createdAt  time.Time
}

func (b bookingItem) Title() string {
	if b.status != "" {
		return fmt.Sprintf("%s • %s", b.code, b.status)
	}
	return b.code
}

func (b bookingItem) Description() string {
	parts := []string{}
	if b.studio != "" {
		parts = append(parts, b.studio)
	}
	if b.seats != "" {
		parts = append(parts, "Seats: "+b.seats)
	}
	if b.bookedType != "" {
		parts = append(parts, string(b.bookedType))
	}
	if !b.createdAt.IsZero() {
		parts = append(parts, b.createdAt.Local().Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, " • ")
}

func (b bookingItem) FilterValue() string {
	return strings.ToLower(b.code + " " + b.studio)
}

// buildStudioItems lists visible studios first. Hidden ones are included only
// when showHidden is set.
func buildStudioItems(studios []model.Studio, hidden map[int64]bool, showHidden bool) []list.Item {
	sorted := append([]model.Studio(nil), studios...)
	sort.SliceStable(sorted, func(i, j int) bool {
		hi, hj := hidden[sorted[i].ID], hidden[sorted[j].ID]
		if hi != hj {
			return !hi
		}
		return sorted[i].ID < sorted[j].ID
	})

	items := make([]list.Item, 0, len(sorted))
	for _, studio := range sorted {
		if hidden[studio.ID] && !showHidden {
			continue
		}
		items = append(items, studioItem{studio: studio, hidden: hidden[studio.ID]})
	}
	return items
}

func buildBookingItems(bookings []model.Booking, studios map[int64]string) []list.Item {
	items := make([]list.Item, 0, len(bookings))
	for _, b := range bookings {
		name := studios[b.StudioID]
		if name == "" {
			name = fmt.Sprintf("Studio #%d", b.StudioID)
		}
		items = append(items, bookingItem{
			code:       b.Code,
			studio:     name,
			seats:      formatSeatIDs(b.SeatIDs),
			status:     b.Status,
			bookedType: b.Type,
			createdAt:  b.CreatedAt,
		})
	}
	return items
}

func buildRecentBookingItems(recent []store.RecentBooking) []list.Item {
	items := make([]list.Item, 0, len(recent))
	for _, r := range recent {
		items = append(items, bookingItem{
			code:       r.Code,
			studio:     r.StudioName,
			seats:      strings.Join(r.Seats, ", "),
			status:     r.Status,
			bookedType: r.Type,
			createdAt:  r.CreatedAt,
		})
	}
	return items
}

func formatSeatIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("#%d", id))
	}
	return strings.Join(parts, ", ")
}
