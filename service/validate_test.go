package service

import (
	"errors"
	"testing"
)

type sampleRequest struct {
	StudioID int64   `json:"studioId" validate:"required,gt=0"`
	SeatIDs  []int64 `json:"seatIds" validate:"required,min=1"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
}

func TestFieldError(t *testing.T) {
	valid := sampleRequest{StudioID: 1, SeatIDs: []int64{1}, Email: "rina@example.com", Password: "secret123"}
	cases := []struct {
		name    string
		mutate  func(*sampleRequest)
		field   string
		message string
	}{
		{"missing email", func(r *sampleRequest) { r.Email = "" }, "email", "email is required"},
		{"bad email", func(r *sampleRequest) { r.Email = "nope" }, "email", "email must be a valid email address"},
		{"short password", func(r *sampleRequest) { r.Password = "123" }, "password", "password must be at least 6 characters"},
		{"empty seat list", func(r *sampleRequest) { r.SeatIDs = []int64{} }, "seatIds", "seatIds must not be empty"},
		{"negative studio", func(r *sampleRequest) { r.StudioID = -1 }, "studioId", "studioId must be greater than 0"},
	}

	v := NewValidator()
	if err := v.Struct(valid); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	for _, tc := range cases {
		req := valid
		tc.mutate(&req)
		err := FieldError(v.Struct(req))
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if valErr.Field != tc.field || valErr.Message != tc.message {
			t.Fatalf("%s: got %q %q, want %q %q", tc.name, valErr.Field, valErr.Message, tc.field, tc.message)
		}
	}
}

func TestFieldError_NonValidatorError(t *testing.T) {
	err := FieldError(errors.New("boom"))
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
