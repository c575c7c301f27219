package booking

import (
	"context"

	"github.com/sirupsen/logrus"

	"studio-booking-cli/model"
	"studio-booking-cli/service"
)

type Checker interface {
	ValidateBooking(ctx context.Context, code string) (model.ValidationResult, error)
}

// Validator answers whether a code is a live, unused booking. The gate only
// sees a boolean: unknown, used and cancelled codes all validate as invalid.
type Validator struct {
	backend Checker
	log     logrus.FieldLogger
}

func NewValidator(backend Checker, log logrus.FieldLogger) *Validator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Validator{backend: backend, log: log}
}

// Validate checks a typed code or a decoded scan payload.
func (v *Validator) Validate(ctx context.Context, input string) (model.ValidationResult, error) {
	code := ParsePayload(input)
	if code == "" {
		return model.ValidationResult{}, &service.ValidationError{Field: "bookingCode", Message: "enter a booking code"}
	}

	result, err := v.backend.ValidateBooking(ctx, code)
	if err != nil {
		if service.IsNotFound(err) {
			v.log.WithField("booking_code", code).Info("unknown booking code")
			return model.ValidationResult{Valid: false, Booking: model.ValidatedBooking{BookingCode: code}}, nil
		}
		return model.ValidationResult{}, err
	}

	switch result.Booking.Status {
	case model.BookingUsed, model.BookingCancelled:
		result.Valid = false
	}
	if result.Booking.BookingCode == "" {
		result.Booking.BookingCode = code
	}
	v.log.WithFields(logrus.Fields{"booking_code": code, "valid": result.Valid}).Info("booking validated")
	return result, nil
}
