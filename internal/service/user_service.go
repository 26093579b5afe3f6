package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/apperror"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const (
	msgEmailTaken         = "User with this email already exists"
	msgInvalidCredentials = "Invalid credentials"

	// bcrypt refuses longer input
	maxPasswordBytes = 72
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// TokenIssuer signs identity tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type Registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
}

type UserService struct {
	store  UserStore
	tokens TokenIssuer
	log    *slog.Logger
}

func NewUserService(store UserStore, tokens TokenIssuer, log *slog.Logger) *UserService {
	return &UserService{store: store, tokens: tokens, log: log}
}

// Register creates a user with a bcrypt-hashed password and returns it with a fresh token.
// Emails are compared exactly as given after trimming.
func (s *UserService) Register(ctx context.Context, reg Registration) (*model.User, string, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := validate.Struct(reg); err != nil {
		return nil, "", validationError(err)
	}
	// max counts runes, multi-byte passwords can still overflow
	if len(reg.Password) > maxPasswordBytes {
		return nil, "", apperror.NewValidationError(fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}

	existing, err := s.store.FindByEmail(ctx, reg.Email)
	switch {
	case err == nil && existing != nil:
		return nil, "", apperror.NewConflictError(msgEmailTaken)
	case err != nil && !errors.Is(err, repository.ErrUserNotFound):
		return nil, "", apperror.NewInternalError("failed to look up user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to hash password", err)
	}

	user := &model.User{
		ID:             uuid.New(),
		Name:           reg.Name,
		Email:          reg.Email,
		HashedPassword: string(hash),
	}
	if err := s.store.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", apperror.NewConflictError(msgEmailTaken)
		}
		return nil, "", apperror.NewInternalError("failed to create user", err)
	}

	token, err := s.tokens.GenerateToken(user.ID.String())
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to generate token", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

// Login checks the password against the stored hash. Unknown emails and wrong
// passwords are reported the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", apperror.NewValidationError(msgMissingFields)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", apperror.NewUnauthorizedError(msgInvalidCredentials)
		}
		return nil, "", apperror.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return nil, "", apperror.NewUnauthorizedError(msgInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, "", apperror.NewUnauthorizedError(msgInvalidCredentials)
	}

	token, err := s.tokens.GenerateToken(user.ID.String())
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to generate token", err)
	}
	return user, token, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.NewNotFoundError("User not found")
		}
		return nil, apperror.NewInternalError("failed to get user", err)
	}
	return user, nil
}
