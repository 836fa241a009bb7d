package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/auth"
	"ms-engagement/internal/database"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/models"
)

const avatarBaseURL = "https://api.dicebear.com/7.x/initials/svg?seed="

type DBLayer interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type UserService struct {
	DB       DBLayer
	Secret   string
	TokenTTL time.Duration
	Logger   *logger.Logger
}

func NewUserService(db DBLayer, secret string, tokenTTL time.Duration, log *logger.Logger) *UserService {
	return &UserService{DB: db, Secret: secret, TokenTTL: tokenTTL, Logger: log}
}

// Register creates an account. Emails are stored lower-cased so lookups are
// case-insensitive.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || fullName == "" || req.Password == "" {
		return nil, fmt.Errorf("full name, email and password are required: %w", apperrors.ErrValidation)
	}

	exists, err := s.DB.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %v: %w", err, apperrors.ErrPersistence)
	}
	if exists {
		return nil, fmt.Errorf("email %s already registered: %w", email, apperrors.ErrConflict)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %v: %w", err, apperrors.ErrPersistence)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:         uuid.NewString(),
		FullName:   fullName,
		Email:      email,
		Password:   hash,
		ProfilePic: avatarBaseURL + url.QueryEscape(fullName),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.DB.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration for the same address
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email %s already registered: %w", email, apperrors.ErrConflict)
		}
		s.Logger.Error("USER", fmt.Sprintf("Failed to create user: %v", err))
		return nil, fmt.Errorf("create user: %v: %w", err, apperrors.ErrPersistence)
	}

	s.Logger.Info("USER", fmt.Sprintf("Registered user %s", user.ID))
	return user, nil
}

// Login checks the credentials and issues a session token. Unknown email and wrong
// password are reported identically.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.DB.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		s.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("unknown email %s", email))
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %v: %w", err, apperrors.ErrPersistence)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("bad password for user %s", user.ID))
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrValidation)
	}

	token, err := auth.IssueToken(s.Secret, user.ID, s.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %v: %w", err, apperrors.ErrPersistence)
	}

	s.Logger.Info("USER", fmt.Sprintf("User %s logged in", user.ID))
	return &models.AuthResponse{Token: token, User: user.Public()}, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("no caller: %w", apperrors.ErrUnauthorized)
	}
	user, err := s.DB.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %v: %w", err, apperrors.ErrPersistence)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
