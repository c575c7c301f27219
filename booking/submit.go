// Package booking turns a seat selection into a booking and checks booking
// codes at the gate.
package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"studio-booking-cli/model"
	"studio-booking-cli/selection"
	"studio-booking-cli/service"
)

// Backend is the part of the booking API the submitter needs.
type Backend interface {
	ListSeats(ctx context.Context, studioID int64) ([]model.Seat, error)
	CreateOnlineBooking(ctx context.Context, token string, req model.OnlineBookingRequest) (model.BookingResponse, error)
	CreateOfflineBooking(ctx context.Context, req model.OfflineBookingRequest) (model.BookingResponse, error)
}

// Result is a created booking plus what is needed to show its ticket.
type Result struct {
	Booking   model.Booking
	QRPayload string
	ServerQR  string
}

// Submitter sends bookings to the backend exactly once per call. It never
// arbitrates double booking itself: the backend's atomic claim decides, and
// the submitter only reports the decision.
type Submitter struct {
	backend   Backend
	validate  *validator.Validate
	log       logrus.FieldLogger
	reconcile bool
}

func NewSubmitter(backend Backend, log logrus.FieldLogger) *Submitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Submitter{
		backend:   backend,
		validate:  service.NewValidator(),
		log:       log,
		reconcile: true,
	}
}

// WithoutReconcile disables the pre-submit availability read.
func (s *Submitter) WithoutReconcile() *Submitter {
	s.reconcile = false
	return s
}

// SubmitOnline books the selected seats for the owner of token.
func (s *Submitter) SubmitOnline(ctx context.Context, snap selection.Snapshot, token string) (Result, error) {
	if err := requireSelection(snap); err != nil {
		return Result{}, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Result{}, &service.AuthError{Reason: "sign in to book online"}
	}
	if err := s.checkAvailability(ctx, snap); err != nil {
		return Result{}, err
	}

	log := s.log.WithFields(logrus.Fields{"studio_id": snap.StudioID, "seat_ids": snap.SeatIDs, "type": model.BookingOnline})
	res, err := s.backend.CreateOnlineBooking(ctx, token, model.OnlineBookingRequest{
		StudioID: snap.StudioID,
		SeatIDs:  snap.SeatIDs,
	})
	if err != nil {
		log.WithError(err).Warn("online booking rejected")
		return Result{}, err
	}
	log.WithField("booking_code", res.Booking.Code).Info("online booking created")
	return newResult(res), nil
}

// SubmitOffline books the selected seats for a walk-in customer.
func (s *Submitter) SubmitOffline(ctx context.Context, snap selection.Snapshot, customerName string, customerEmail string) (Result, error) {
	if err := requireSelection(snap); err != nil {
		return Result{}, err
	}
	req := model.OfflineBookingRequest{
		StudioID:      snap.StudioID,
		SeatIDs:       snap.SeatIDs,
		CustomerName:  strings.TrimSpace(customerName),
		CustomerEmail: strings.TrimSpace(customerEmail),
	}
	if err := s.validate.Struct(req); err != nil {
		return Result{}, service.FieldError(err)
	}
	if err := s.checkAvailability(ctx, snap); err != nil {
		return Result{}, err
	}

	log := s.log.WithFields(logrus.Fields{"studio_id": snap.StudioID, "seat_ids": snap.SeatIDs, "type": model.BookingOffline})
	res, err := s.backend.CreateOfflineBooking(ctx, req)
	if err != nil {
		log.WithError(err).Warn("offline booking rejected")
		return Result{}, err
	}
	log.WithField("booking_code", res.Booking.Code).Info("offline booking created")
	return newResult(res), nil
}

// checkAvailability rejects early when a fresh read already shows a selected
// seat as taken. A failed read is not an error: the backend still decides.
func (s *Submitter) checkAvailability(ctx context.Context, snap selection.Snapshot) error {
	if !s.reconcile {
		return nil
	}
	seats, err := s.backend.ListSeats(ctx, snap.StudioID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		s.log.WithError(err).WithField("studio_id", snap.StudioID).Debug("availability check skipped")
		return nil
	}
	index := service.SeatIndex(seats)
	var taken []int64
	for _, id := range snap.SeatIDs {
		seat, ok := index[id]
		if !ok || !seat.Available {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return &service.ConflictError{SeatIDs: taken, Message: "seat no longer available"}
	}
	return nil
}

func requireSelection(snap selection.Snapshot) error {
	if !snap.HasStudio || snap.StudioID <= 0 {
		return &service.ValidationError{Field: "studio", Message: "select a studio first"}
	}
	if len(snap.SeatIDs) == 0 {
		return &service.ValidationError{Field: "seats", Message: "select at least one seat"}
	}
	return nil
}

func newResult(res model.BookingResponse) Result {
	serverQR := res.QRCode
	if serverQR == "" {
		serverQR = res.Booking.QRCode
	}
	return Result{
		Booking:   res.Booking,
		QRPayload: EncodePayload(res.Booking.Code),
		ServerQR:  serverQR,
	}
}
