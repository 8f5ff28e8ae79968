package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/tubebrief/tubebrief-backend/internal/models"
	"github.com/tubebrief/tubebrief-backend/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrUserInactive is returned when a user is inactive
	ErrUserInactive = errors.New("user account is inactive")
)

// Service handles authentication operations
type Service struct {
	userRepo repository.UserRepository
	jwt      *JWTService
}

// NewService creates a new auth service
func NewService(userRepo repository.UserRepository, jwtSecret string) *Service {
	return &Service{
		userRepo: userRepo,
		jwt:      NewJWTService(jwtSecret, "tubebrief"),
	}
}

// Login authenticates a user and issues an access token
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	if !CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(user.ID.String(), user.Email, user.Username, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// ValidateAccessToken validates a bearer token and resolves the user context
func (s *Service) ValidateAccessToken(tokenString string) (*models.UserContext, error) {
	claims, err := s.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidClaims
	}

	return &models.UserContext{
		UserID:   userID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}
