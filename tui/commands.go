package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"studio-booking-cli/booking"
	"studio-booking-cli/model"
	"studio-booking-cli/selection"
	"studio-booking-cli/store"
)

type errMsg struct {
	err            error
	returnState    appState
	returnStateSet bool
}

type studiosMsg struct {
	studios []model.Studio
	hidden  map[int64]bool
	err     error
}

type seatsMsg struct {
	studioID int64
	seats    []model.Seat
	err      error
}

type bookingMsg struct {
	snap   selection.Snapshot
	result booking.Result
	err    error
}

type validationMsg struct {
	result model.ValidationResult
	err    error
}

type bookingsMsg struct {
	bookings []model.Booking
	recent   []store.RecentBooking
	local    bool
	err      error
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

func errWithReturnCmd(err error, returnState appState) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err, returnState: returnState, returnStateSet: true}
	}
}

func (m appModel) fetchStudiosCmd(useCache bool) tea.Cmd {
	baseURL := m.client.BaseURL()
	return func() tea.Msg {
		hidden, err := store.LoadHiddenStudios()
		if err != nil {
			m.log.WithError(err).Warn("hidden studios unreadable")
			hidden = map[int64]bool{}
		}
		if useCache {
			if cached, fresh, err := store.LoadStudioCache(baseURL); err == nil && fresh && len(cached) > 0 {
				return studiosMsg{studios: cached, hidden: hidden}
			}
		}
		ctx := context.Background()
		studios, err := m.client.ListStudios(ctx)
		if err == nil && len(studios) > 0 {
			_ = store.SaveStudioCache(baseURL, studios)
		}
		return studiosMsg{studios: studios, hidden: hidden, err: err}
	}
}

func (m appModel) fetchSeatsCmd(studioID int64) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		seats, err := m.client.ListSeats(ctx, studioID)
		return seatsMsg{studioID: studioID, seats: seats, err: err}
	}
}

// submitOnlineCmd sends the booking. The token is resolved before the command
// runs so an expired session fails without a request.
func (m appModel) submitOnlineCmd(snap selection.Snapshot, token string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		result, err := m.submitter.SubmitOnline(ctx, snap, token)
		return bookingMsg{snap: snap, result: result, err: err}
	}
}

func (m appModel) submitOfflineCmd(snap selection.Snapshot, name string, email string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		result, err := m.submitter.SubmitOffline(ctx, snap, name, email)
		return bookingMsg{snap: snap, result: result, err: err}
	}
}

func (m appModel) validateCmd(input string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		result, err := m.validator.Validate(ctx, input)
		return validationMsg{result: result, err: err}
	}
}

// fetchBookingsCmd loads the account's bookings, or the local ticket history
// when nobody is signed in.
func (m appModel) fetchBookingsCmd() tea.Cmd {
	token, tokenErr := m.session.IdentityToken(m.now())
	return func() tea.Msg {
		if tokenErr != nil {
			recent, err := store.LoadRecentBookings()
			return bookingsMsg{recent: recent, local: true, err: err}
		}
		ctx := context.Background()
		bookings, err := m.client.MyBookings(ctx, token)
		return bookingsMsg{bookings: bookings, err: err}
	}
}
