// Package backendtest is an in-memory implementation of the booking REST API.
// It backs the client tests and the mock-server command. Seat claims are
// check-and-reserve under one lock, so of two overlapping bookings exactly one
// wins.
package backendtest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"studio-booking-cli/model"
)

const APIPrefix = "/api"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrSeatNotFound    = errors.New("seat not found")
)

type account struct {
	user         model.User
	passwordHash []byte
}

// Server holds the backend state. The zero value is not usable; call New.
type Server struct {
	mu       sync.Mutex
	studios  map[int64]model.Studio
	seats    map[int64]model.Seat
	blocked  map[int64]bool
	claims   map[int64]string
	bookings map[string]*model.Booking
	accounts map[string]*account

	nextStudioID  int64
	nextSeatID    int64
	nextBookingID int64
	nextUserID    int64

	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
	validate *validator.Validate
	engine   *gin.Engine
	onClaim  func()
}

type Option func(*Server)

func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// WithClaimHook runs fn when a booking request reaches the claim step, before
// the claim lock is taken.
func WithClaimHook(fn func()) Option {
	return func(s *Server) { s.onClaim = fn }
}

func New(opts ...Option) *Server {
	s := &Server{
		studios:  map[int64]model.Studio{},
		seats:    map[int64]model.Seat{},
		blocked:  map[int64]bool{},
		claims:   map[int64]string{},
		bookings: map[string]*model.Booking{},
		accounts: map[string]*account{},
		secret:   []byte("backendtest-secret"),
		tokenTTL: 24 * time.Hour,
		now:      time.Now,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		s.log = discard
	}
	s.engine = s.routes()
	return s
}

// Handler serves the API under APIPrefix.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// AddStudio creates a studio whose seats carry the given labels, all free.
func (s *Server) AddStudio(name string, labels ...string) (model.Studio, []model.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextStudioID++
	now := s.now().UTC()
	studio := model.Studio{ID: s.nextStudioID, Name: name, TotalSeats: len(labels), CreatedAt: now, UpdatedAt: now}
	s.studios[studio.ID] = studio

	seats := make([]model.Seat, 0, len(labels))
	for _, label := range labels {
		s.nextSeatID++
		seat := model.Seat{ID: s.nextSeatID, StudioID: studio.ID, Label: label, StudioName: name, CreatedAt: now, UpdatedAt: now}
		s.seats[seat.ID] = seat
		seats = append(seats, s.seatView(seat))
	}
	return studio, seats
}

// AddStudioWithID registers a studio and seats with fixed ids.
func (s *Server) AddStudioWithID(studio model.Studio, seats ...model.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	studio.TotalSeats = len(seats)
	s.studios[studio.ID] = studio
	if studio.ID > s.nextStudioID {
		s.nextStudioID = studio.ID
	}
	for _, seat := range seats {
		seat.StudioID = studio.ID
		seat.StudioName = studio.Name
		s.seats[seat.ID] = seat
		s.blocked[seat.ID] = !seat.Available
		if seat.ID > s.nextSeatID {
			s.nextSeatID = seat.ID
		}
	}
}

// SetSeatAvailable blocks or unblocks a seat outside of any booking.
func (s *Server) SetSeatAvailable(seatID int64, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seats[seatID]; !ok {
		return ErrSeatNotFound
	}
	s.blocked[seatID] = !available
	return nil
}

// SetStatus moves a booking to status. Cancelling releases its seats.
func (s *Server) SetStatus(code string, status model.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[code]
	if !ok {
		return ErrBookingNotFound
	}
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	b.Status = status
	b.UpdatedAt = s.now().UTC()
	if status == model.BookingCancelled {
		for _, id := range b.SeatIDs {
			if s.claims[id] == code {
				delete(s.claims, id)
			}
		}
	}
	return nil
}

func (s *Server) Booking(code string) (model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[code]
	if !ok {
		return model.Booking{}, false
	}
	return cloneBooking(b), true
}

// Bookings returns every booking ordered by id.
func (s *Server) Bookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Seed loads a small demo catalogue.
func (s *Server) Seed() {
	for i, rows := range []string{"ABCDE", "ABCDEFGH"} {
		var labels []string
		for _, row := range rows {
			for col := 1; col <= 10; col++ {
				labels = append(labels, fmt.Sprintf("%c%d", row, col))
			}
		}
		s.AddStudio(fmt.Sprintf("Studio %d", i+1), labels...)
	}
}

func (s *Server) listSeats(studioID int64) ([]model.Seat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.studios[studioID]; !ok {
		return nil, false
	}
	out := []model.Seat{}
	for _, seat := range s.seats {
		if seat.StudioID == studioID {
			out = append(out, s.seatView(seat))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, true
}

func (s *Server) listStudios() []model.Studio {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Studio, 0, len(s.studios))
	for _, studio := range s.studios {
		out = append(out, studio)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// seatView fills in availability; callers hold s.mu.
func (s *Server) seatView(seat model.Seat) model.Seat {
	_, claimed := s.claims[seat.ID]
	seat.Available = !claimed && !s.blocked[seat.ID]
	return seat
}

type claimError struct {
	status  int
	message string
	seatIDs []int64
}

func (e *claimError) Error() string { return e.message }

// claim reserves every seat for a new booking or none of them.
func (s *Server) claim(b model.Booking) (model.Booking, error) {
	if s.onClaim != nil {
		s.onClaim()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.studios[b.StudioID]; !ok {
		return model.Booking{}, &claimError{status: http.StatusNotFound, message: "studio not found"}
	}

	seen := map[int64]bool{}
	var taken []int64
	for _, id := range b.SeatIDs {
		if seen[id] {
			return model.Booking{}, &claimError{status: http.StatusBadRequest, message: fmt.Sprintf("seat %d listed twice", id)}
		}
		seen[id] = true
		seat, ok := s.seats[id]
		if !ok || seat.StudioID != b.StudioID {
			return model.Booking{}, &claimError{status: http.StatusBadRequest, message: fmt.Sprintf("seat %d does not belong to studio %d", id, b.StudioID)}
		}
		if _, claimed := s.claims[id]; claimed || s.blocked[id] {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return model.Booking{}, &claimError{status: http.StatusConflict, message: "seats already booked", seatIDs: taken}
	}

	s.nextBookingID++
	now := s.now().UTC()
	b.ID = s.nextBookingID
	b.Code = s.newCode()
	b.Status = model.BookingActive
	b.CreatedAt = now
	b.UpdatedAt = now
	b.SeatIDs = append([]int64(nil), b.SeatIDs...)

	stored := b
	s.bookings[b.Code] = &stored
	for _, id := range b.SeatIDs {
		s.claims[id] = b.Code
	}
	return cloneBooking(&stored), nil
}

// newCode returns an unused booking code; callers hold s.mu.
func (s *Server) newCode() string {
	for {
		raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
		code := "BK-" + raw[:12]
		if _, exists := s.bookings[code]; !exists {
			return code
		}
	}
}

func (s *Server) bookingsForUser(userID int64) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if b.UserID != nil && *b.UserID == userID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func cloneBooking(b *model.Booking) model.Booking {
	out := *b
	out.SeatIDs = append([]int64(nil), b.SeatIDs...)
	if b.UserID != nil {
		id := *b.UserID
		out.UserID = &id
	}
	return out
}
