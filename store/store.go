package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"studio-booking-cli/model"
)

const (
	appDir            = "studio-booking-cli"
	studioCacheTTL    = 10 * time.Minute
	maxRecentBookings = 20
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// Session is the signed-in account persisted between runs.
type Session struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type RecentBooking struct {
	Code       string              `json:"code"`
	StudioID   int64               `json:"studio_id"`
	StudioName string              `json:"studio_name"`
	Seats      []string            `json:"seats"`
	Type       model.BookingType   `json:"type"`
	Status     model.BookingStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
}

type bookingHistory struct {
	Bookings []RecentBooking `json:"bookings"`
}

type studioVisibility struct {
	Hidden []int64 `json:"hidden"`
}

// LoadSession returns the stored session. ok is false when nobody is signed in.
func LoadSession() (Session, bool, error) {
	path, err := configPath("session.json")
	if err != nil {
		return Session{}, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, false, errors.New("invalid session format")
	}
	if strings.TrimSpace(session.Token) == "" {
		return Session{}, false, nil
	}
	return session, true, nil
}

func SaveSession(session Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return errors.New("session token is required")
	}
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	return writeJSON(path, session, 0o600)
}

func ClearSession() error {
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// LoadStudioCache returns cached studios for baseURL and whether they are
// still fresh.
func LoadStudioCache(baseURL string) ([]model.Studio, bool, error) {
	path, err := cachePath(cacheName("studios", baseURL))
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Studio](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= studioCacheTTL, nil
}

func SaveStudioCache(baseURL string, studios []model.Studio) error {
	path, err := cachePath(cacheName("studios", baseURL))
	if err != nil {
		return err
	}
	return saveCache(path, studios)
}

func LoadRecentBookings() ([]RecentBooking, error) {
	path, err := configPath("bookings.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history bookingHistory
	if err := json.Unmarshal(data, &history); err == nil {
		return history.Bookings, nil
	}

	var legacy []string
	if err := json.Unmarshal(data, &legacy); err == nil {
		var bookings []RecentBooking
		for _, code := range legacy {
			if code != "" {
				bookings = append(bookings, RecentBooking{Code: code})
			}
		}
		return bookings, nil
	}

	return nil, errors.New("invalid booking history format")
}

// RememberBooking puts booking at the head of the local ticket history.
func RememberBooking(booking RecentBooking) error {
	if strings.TrimSpace(booking.Code) == "" {
		return errors.New("booking code is required")
	}
	history, _ := LoadRecentBookings()
	next := []RecentBooking{booking}

	for _, existing := range history {
		if strings.EqualFold(existing.Code, booking.Code) {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentBookings {
			break
		}
	}

	path, err := configPath("bookings.json")
	if err != nil {
		return err
	}
	return writeJSON(path, bookingHistory{Bookings: next}, 0o644)
}

func LoadHiddenStudios() (map[int64]bool, error) {
	visibility, err := loadStudioVisibility()
	if err != nil {
		return nil, err
	}
	result := map[int64]bool{}
	for _, id := range visibility.Hidden {
		if id > 0 {
			result[id] = true
		}
	}
	return result, nil
}

func SetStudioHidden(studioID int64, hidden bool) error {
	if studioID <= 0 {
		return errors.New("studio id is required")
	}

	visibility, err := loadStudioVisibility()
	if err != nil {
		return err
	}

	current := visibility.Hidden
	index := -1
	for i, id := range current {
		if id == studioID {
			index = i
			break
		}
	}

	if hidden {
		if index < 0 {
			current = append(current, studioID)
		}
	} else if index >= 0 {
		current = append(current[:index], current[index+1:]...)
	}
	sort.Slice(current, func(i, j int) bool { return current[i] < current[j] })
	visibility.Hidden = current

	path, err := configPath("studio_visibility.json")
	if err != nil {
		return err
	}
	return writeJSON(path, visibility, 0o644)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	return writeJSON(path, cache, 0o644)
}

func loadStudioVisibility() (studioVisibility, error) {
	path, err := configPath("studio_visibility.json")
	if err != nil {
		return studioVisibility{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return studioVisibility{}, nil
		}
		return studioVisibility{}, err
	}

	var visibility studioVisibility
	if err := json.Unmarshal(data, &visibility); err != nil {
		return studioVisibility{}, errors.New("invalid studio visibility format")
	}
	return visibility, nil
}

func writeJSON(path string, value any, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, perm)
}

// cacheName keeps caches for different backends apart.
func cacheName(kind string, baseURL string) string {
	key := strings.TrimSpace(baseURL)
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, key)
	if key == "" {
		return kind + ".json"
	}
	return kind + "_" + key + ".json"
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

// CachePath is where non-config state such as the client log lives.
func CachePath(name string) (string, error) {
	return cachePath(name)
}
