package user_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/auth"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/models"
	"ms-engagement/internal/utils"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// CookieConfig describes the session cookie set on login.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type Handler struct {
	UserService UserService
	Validator   *utils.Validator
	Cookie      CookieConfig
	Logger      *logger.Logger
}

func NewHandler(userService UserService, validator *utils.Validator, cookie CookieConfig, log *logger.Logger) *Handler {
	return &Handler{UserService: userService, Validator: validator, Cookie: cookie, Logger: log}
}

func (h *Handler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %v: %w", err, apperrors.ErrValidation)
	}
	return h.Validator.Validate(dst)
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := h.decode(r, &req); err != nil {
		utils.WriteError(w, "Invalid registration data", err)
		return
	}

	user, err := h.UserService.Register(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Register: %v", err))
		utils.WriteError(w, "Registration failed", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("User registered successfully", user.Public()))
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.decode(r, &req); err != nil {
		utils.WriteError(w, "Invalid credentials", err)
		return
	}

	resp, err := h.UserService.Login(r.Context(), req)
	if err != nil {
		utils.WriteError(w, "Invalid credentials", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    resp.Token,
		Path:     "/",
		MaxAge:   int(h.Cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Login successful", resp))
}

// Logout handles POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.Cookie.Name); err != nil || c.Value == "" {
		utils.WriteError(w, "No active session", fmt.Errorf("no session cookie: %w", apperrors.ErrValidation))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged out successfully", nil))
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to fetch user", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("User fetched successfully", user.Public()))
}

func (h *Handler) RegisterRoutes(r chi.Router, protected func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(protected).Get("/me", h.Me)
	})
}
