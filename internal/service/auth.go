package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediatracker/mediatracker-go/internal/crypto"
	"github.com/mediatracker/mediatracker-go/internal/model"
	"github.com/mediatracker/mediatracker-go/internal/repository"
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// AuthService handles registration, login and bearer token verification.
type AuthService struct {
	users  UserStore
	tokens *crypto.TokenIssuer
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *crypto.TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		now:    time.Now,
	}
}

// Register creates a new user account and returns an auth token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	switch {
	case username == "":
		return model.AuthResponse{}, ErrUsernameRequired
	case email == "":
		return model.AuthResponse{}, ErrEmailRequired
	case req.Password == "":
		return model.AuthResponse{}, ErrPasswordRequired
	}

	_, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return model.AuthResponse{}, ErrUserExists
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.AuthResponse{}, storeError(err)
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return model.AuthResponse{}, ErrUserExists
		}
		return model.AuthResponse{}, storeError(err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.authResponse("user registered successfully", user)
}

// Login authenticates by username or email and returns an auth token.
// Unknown users and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier())
	if identifier == "" || req.Password == "" {
		return model.AuthResponse{}, ErrCredentialsRequired
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			crypto.VerifyDummy(req.Password)
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, storeError(err)
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil && !errors.Is(err, crypto.ErrInvalidHashFormat) {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse("login successful", user)
}

// VerifyToken checks an Authorization header value of the form "Bearer <token>".
// It never touches the user store.
func (s *AuthService) VerifyToken(header string) (model.Identity, error) {
	if header == "" {
		return model.Identity{}, ErrTokenMissing
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" || strings.ContainsAny(token, " \t") {
		return model.Identity{}, ErrTokenMalformed
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, crypto.ErrTokenExpired) {
			return model.Identity{}, ErrTokenExpired
		}
		return model.Identity{}, ErrTokenInvalid
	}

	return model.Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// GetProfile returns the public view of the authenticated user.
func (s *AuthService) GetProfile(ctx context.Context, identity model.Identity) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, storeError(err)
	}

	return model.NewUserResponse(user), nil
}

// EnsureUser creates the account behind identity if it does not exist yet.
// The account has no usable password, so it can never log in.
func (s *AuthService) EnsureUser(ctx context.Context, identity model.Identity) error {
	_, err := s.users.GetByID(ctx, identity.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return storeError(err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:          identity.ID,
		Username:    identity.Username,
		Email:       identity.Email,
		DisplayName: identity.Username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			slog.Warn("default user conflicts with an existing account", "user_id", identity.ID, "username", identity.Username)
			return nil
		}
		return storeError(err)
	}

	slog.Info("default user created", "user_id", identity.ID)
	return nil
}

func (s *AuthService) authResponse(message string, user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID, user.Username, user.Email)
	if err != nil {
		return model.AuthResponse{}, err
	}

	resp := model.NewUserResponse(user)
	resp.CreatedAt = nil
	return model.AuthResponse{
		Message: message,
		Token:   token,
		User:    resp,
	}, nil
}
