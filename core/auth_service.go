package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the POST /api/users body. Shape constraints are enforced
// by gin's binding layer before the service runs.
type RegisterRequest struct {
	Username  string  `json:"username" binding:"required,min=3,max=100"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName string  `json:"firstName" binding:"required,min=1"`
	LastName  *string `json:"lastName"`
}

// LoginRequest is the POST /api/users/login body.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserResponse is the data payload for all three user endpoints. FullName and
// Token are only set by the operations that produce them.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Token    string `json:"token,omitempty"`
}

// AuthService implements registration, login, and token-based identity
// resolution over an AccountStore. It holds no mutable state of its own; all
// consistency is delegated to the store.
type AuthService struct {
	store      AccountStore
	bcryptCost int
	metrics    *AuthMetrics
}

// NewAuthService wires an AuthService. metrics may be nil.
func NewAuthService(store AccountStore, bcryptCost int, metrics *AuthMetrics) *AuthService {
	if bcryptCost <= 0 {
		bcryptCost = 10
	}
	return &AuthService{store: store, bcryptCost: bcryptCost, metrics: metrics}
}

// Register creates a user and its profile. The username and email existence
// checks are advisory: two concurrent registrations can both pass them, and
// the second insert then fails on the store's unique constraint.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	slog.InfoContext(ctx, "registering user", "username", req.Username, "email", req.Email)

	if _, err := s.store.FindUserByUsername(ctx, req.Username); err == nil {
		return UserResponse{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return UserResponse{}, err
	}

	if _, err := s.store.FindProfileByEmail(ctx, req.Email); err == nil {
		return UserResponse{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return UserResponse{}, err
	}

	id, err := s.store.CreateUserWithProfile(ctx, req.Username, string(hash), req.Email, req.FirstName, req.LastName)
	if err != nil {
		return UserResponse{}, err
	}

	s.metrics.CountRegistration(ctx)
	slog.InfoContext(ctx, "user registered", "user_id", id, "username", req.Username)

	// Registration does not imply login: no token, no full name.
	return UserResponse{ID: id, Username: req.Username}, nil
}

// Login verifies the credentials and rotates the user's token. An unknown
// username and a wrong password produce the same error so responses cannot be
// used to enumerate usernames.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (UserResponse, error) {
	slog.InfoContext(ctx, "logging in user", "username", req.Username)

	user, err := s.store.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.CountLoginFailure(ctx)
			return UserResponse{}, ErrInvalidCredentials
		}
		return UserResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.metrics.CountLoginFailure(ctx)
		return UserResponse{}, ErrInvalidCredentials
	}

	// Fresh opaque token on every login; the previous one stops resolving.
	token := uuid.NewString()
	if err := s.store.UpdateUserToken(ctx, user.ID, token); err != nil {
		return UserResponse{}, err
	}

	s.metrics.CountLogin(ctx)
	slog.InfoContext(ctx, "user logged in", "user_id", user.ID, "username", user.Username)

	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName(),
		Token:    token,
	}, nil
}

// ResolveToken maps a bearer token to the user it was issued to. Tokens never
// expire; they are valid until the next login overwrites them.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*UserRecord, error) {
	if token == "" {
		s.metrics.CountTokenDenial(ctx)
		return nil, ErrUnauthorized
	}
	user, err := s.store.FindUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.CountTokenDenial(ctx)
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// CurrentUser re-reads the user and profile by id for the protected profile
// endpoint.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (UserResponse, error) {
	user, err := s.store.FindUserWithProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UserResponse{}, ErrUnauthorized
		}
		return UserResponse{}, err
	}
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName(),
	}, nil
}
