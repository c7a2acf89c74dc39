package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apierrors "github.com/formforge/formforge-backend/pkg/errors"
	"github.com/formforge/formforge-backend/v1/models"
)

const (
	tokenLifetime     = 7 * 24 * time.Hour
	minPasswordLength = 8
)

// AuthService manages user accounts and JWT issuance
type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: []byte(jwtSecret)}
}

// Signup registers a new user and returns a signed token
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !emailPattern.MatchString(email) {
		return nil, apierrors.ValidationError("INVALID_EMAIL", "A valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apierrors.ValidationError("PASSWORD_TOO_SHORT", "Password must be at least 8 characters")
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apierrors.ConflictError("User already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.DatabaseError("check existing user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierrors.InternalErrorWithCause("Failed to hash password", err)
	}

	user := &models.User{
		UserID:       "usr_" + uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apierrors.HandleDatabaseError(err, "User", "create user")
	}

	return s.buildAuthResponse(user)
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.UnauthorizedError("Invalid credentials")
		}
		return nil, apierrors.DatabaseError("get user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apierrors.UnauthorizedError("Invalid credentials")
	}

	return s.buildAuthResponse(&user)
}

// GetUserByID fetches one user
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, apierrors.HandleDatabaseError(err, "User", "get user")
	}
	return &user, nil
}

func (s *AuthService) buildAuthResponse(user *models.User) (*models.AuthResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":    user.UserID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, apierrors.InternalErrorWithCause("Failed to sign token", err)
	}

	return &models.AuthResponse{
		Token: token,
		User:  models.UserResponse{UserID: user.UserID, Email: user.Email},
	}, nil
}
