package backendtest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"studio-booking-cli/model"
)

const userKey = "user"

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group(APIPrefix)
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	api.GET("/cinema/studios", s.handleStudios)
	api.GET("/cinema/studios/:id/seats", s.handleSeats)

	api.POST("/booking/online", s.requireAuth(), s.handleOnlineBooking)
	api.POST("/booking/offline", s.handleOfflineBooking)
	api.POST("/booking/validate", s.handleValidate)
	api.GET("/booking/my-bookings", s.requireAuth(), s.handleMyBookings)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("HTTP Request")
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, err := s.userFromToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abort(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func (s *Server) handleRegister(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	user, token, err := s.AddUser(req.Email, req.Password, req.Name, model.RoleCustomer)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			abort(c, http.StatusConflict, err.Error())
			return
		}
		abort(c, http.StatusInternalServerError, "failed to register user")
		return
	}
	c.JSON(http.StatusCreated, model.AuthResponse{User: user, Token: token})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}
	user, token, err := s.login(req.Email, req.Password)
	if err != nil {
		abort(c, http.StatusUnauthorized, err.Error())
		return
	}
	c.JSON(http.StatusOK, model.AuthResponse{User: user, Token: token})
}

func (s *Server) handleStudios(c *gin.Context) {
	c.JSON(http.StatusOK, s.listStudios())
}

func (s *Server) handleSeats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid studio id")
		return
	}
	seats, ok := s.listSeats(id)
	if !ok {
		abort(c, http.StatusNotFound, "studio not found")
		return
	}
	c.JSON(http.StatusOK, seats)
}

func (s *Server) handleOnlineBooking(c *gin.Context) {
	var req model.OnlineBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StudioID <= 0 || len(req.SeatIDs) == 0 {
		abort(c, http.StatusBadRequest, "studio and seats are required")
		return
	}
	user := c.MustGet(userKey).(model.User)
	userID := user.ID
	s.createBooking(c, model.Booking{
		UserID:    &userID,
		UserName:  user.Name,
		UserEmail: user.Email,
		StudioID:  req.StudioID,
		SeatIDs:   req.SeatIDs,
		Type:      model.BookingOnline,
	})
}

func (s *Server) handleOfflineBooking(c *gin.Context) {
	var req model.OfflineBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if err := s.validate.Struct(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	s.createBooking(c, model.Booking{
		UserName:  req.CustomerName,
		UserEmail: req.CustomerEmail,
		StudioID:  req.StudioID,
		SeatIDs:   req.SeatIDs,
		Type:      model.BookingOffline,
	})
}

func (s *Server) createBooking(c *gin.Context, b model.Booking) {
	created, err := s.claim(b)
	if err != nil {
		var claimErr *claimError
		if errors.As(err, &claimErr) {
			s.log.WithFields(logrus.Fields{"studio_id": b.StudioID, "seat_ids": claimErr.seatIDs}).Info("booking rejected")
			c.AbortWithStatusJSON(claimErr.status, gin.H{"message": claimErr.message, "seatIds": claimErr.seatIDs})
			return
		}
		abort(c, http.StatusInternalServerError, "failed to create booking")
		return
	}
	s.log.WithField("booking_code", created.Code).Info("booking created")
	c.JSON(http.StatusCreated, model.BookingResponse{Booking: created})
}

func (s *Server) handleValidate(c *gin.Context) {
	var req model.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}
	code := strings.TrimSpace(req.BookingCode)
	if code == "" {
		abort(c, http.StatusBadRequest, "booking code is required")
		return
	}
	b, ok := s.Booking(code)
	if !ok {
		abort(c, http.StatusNotFound, ErrBookingNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, model.ValidationResult{
		Valid: b.Status == model.BookingActive,
		Booking: model.ValidatedBooking{
			BookingCode:  b.Code,
			BookingType:  b.Type,
			CustomerName: b.UserName,
			SeatIDs:      b.SeatIDs,
			StudioID:     b.StudioID,
			Status:       b.Status,
		},
	})
}

func (s *Server) handleMyBookings(c *gin.Context) {
	user := c.MustGet(userKey).(model.User)
	c.JSON(http.StatusOK, s.bookingsForUser(user.ID))
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
