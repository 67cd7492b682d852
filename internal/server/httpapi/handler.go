// Package httpapi exposes the shift service over HTTP/JSON: authentication,
// per-day shift state, export upload URLs and a liveness probe.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/shiftbook/internal/common"
	"github.com/dmitrijs2005/shiftbook/internal/logging"
	"github.com/dmitrijs2005/shiftbook/internal/server/models"
	"github.com/dmitrijs2005/shiftbook/internal/server/services"
)

// UserProvider is the slice of UserService the handlers need.
type UserProvider interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// ShiftProvider is the slice of ShiftService the handlers need.
type ShiftProvider interface {
	GetByDate(ctx context.Context, userID, date string) (*models.Shift, error)
	Put(ctx context.Context, userID string, shift *models.Shift, forceClear bool) (*models.Shift, error)
	DeleteByDate(ctx context.Context, userID, date string) error
}

// ExportProvider issues presigned upload URLs for export files.
type ExportProvider interface {
	GetUploadURL(ctx context.Context, userID string, filename string) (string, string, error)
}

// Handler wires the services into http.HandlerFuncs.
type Handler struct {
	users   UserProvider
	shifts  ShiftProvider
	exports ExportProvider
	logger  logging.Logger
}

// NewHandler constructs a Handler.
func NewHandler(users UserProvider, shifts ShiftProvider, exports ExportProvider, logger logging.Logger) *Handler {
	return &Handler{users: users, shifts: shifts, exports: exports, logger: logger}
}

// --- wire shapes, shared with the client ---

type shiftPayload struct {
	models.ShiftFields
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	UpdatedAt int64  `json:"updated_at"`
}

type dayPayload struct {
	Shift        shiftPayload           `json:"shift"`
	Segments     []models.Segment       `json:"segments"`
	GuestRides   []models.GuestRide     `json:"guest_rides"`
	WaitingTimes []models.WaitingPeriod `json:"waiting_times"`
	ForceClear   bool                   `json:"force_clear,omitempty"`
}

type pushResult struct {
	ID        string `json:"id"`
	UpdatedAt int64  `json:"updated_at"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func dayPayloadFromShift(s *models.Shift) *dayPayload {
	return &dayPayload{
		Shift: shiftPayload{
			ShiftFields: s.Fields,
			ID:          s.ID,
			Date:        s.Date,
			UpdatedAt:   s.UpdatedAt,
		},
		Segments:     s.Segments,
		GuestRides:   s.GuestRides,
		WaitingTimes: s.WaitingTimes,
	}
}

func (p *dayPayload) shift() *models.Shift {
	return &models.Shift{
		ID:           p.Shift.ID,
		Date:         p.Shift.Date,
		Fields:       p.Shift.ShiftFields,
		Segments:     p.Segments,
		GuestRides:   p.GuestRides,
		WaitingTimes: p.WaitingTimes,
		UpdatedAt:    p.Shift.UpdatedAt,
	}
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error(ctx, "error encoding response", "error", err)
	}
}

// --- auth endpoints ---

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if c.Username == "" || c.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	if _, err := h.users.Register(r.Context(), c.Username, c.Password); err != nil {
		h.logger.Error(r.Context(), "error registering user", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pair, err := h.users.Login(r.Context(), c.Username, c.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.Error(r.Context(), "error logging in", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pair, err := h.users.RefreshToken(r.Context(), body.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenExpired) {
			http.Error(w, "refresh token expired", http.StatusUnauthorized)
			return
		}
		http.Error(w, "refresh failed", http.StatusUnauthorized)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// --- shift endpoints (authenticated) ---

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}

	shift, err := h.shifts.GetByDate(r.Context(), userID, date)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.logger.Error(r.Context(), "error fetching shift", "error", err, "date", date)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, dayPayloadFromShift(shift))
}

func (h *Handler) PutShift(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var p dayPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Shift.Date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}

	stored, err := h.shifts.Put(r.Context(), userID, p.shift(), p.ForceClear)
	if err != nil {
		if errors.Is(err, common.ErrEmptySegmentsRejected) {
			http.Error(w, "empty segments rejected", http.StatusBadRequest)
			return
		}
		h.logger.Error(r.Context(), "error storing shift", "error", err, "date", p.Shift.Date)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, pushResult{ID: stored.ID, UpdatedAt: stored.UpdatedAt})
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}

	if err := h.shifts.DeleteByDate(r.Context(), userID, date); err != nil {
		h.logger.Error(r.Context(), "error deleting shift", "error", err, "date", date)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// --- export endpoint (authenticated) ---

func (h *Handler) ExportUploadURL(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = fmt.Sprintf("logbook-%s.pdf", uuid.NewString())
	}

	key, url, err := h.exports.GetUploadURL(r.Context(), userID, filename)
	if err != nil {
		h.logger.Error(r.Context(), "error presigning export upload", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"key": key, "url": url})
}

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
