package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Claims are the JWT claims issued to users
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and token issuing
type AuthService struct {
	userRepo  repositories.UserRepository
	settings  *SettingsService
	jwtSecret []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, settings *SettingsService, jwtSecret string, expiresInSeconds int) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		settings:  settings,
		jwtSecret: []byte(jwtSecret),
		expiresIn: time.Duration(expiresInSeconds) * time.Second,
		now:       time.Now,
	}
}

// Register creates a demo user and logs them in
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	demoExpiresAt := now.AddDate(0, 0, settings.DemoDurationDays)
	user := &models.User{
		Email:              email,
		Name:               strings.TrimSpace(req.Name),
		Password:           string(hashedPassword),
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionDemo,
		DemoExpiresAt:      &demoExpiresAt,
		LastActivity:       now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("User registered", "userId", user.ID.Hex(), "email", utils.MaskEmail(email), "demoExpiresAt", demoExpiresAt.Format(time.RFC3339))
	return s.respond(user)
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		slog.Warn("Login failed", "email", utils.MaskEmail(email))
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.Touch(ctx, user.ID, s.now()); err != nil {
		slog.Warn("Failed to record login activity", "error", err, "userId", user.ID.Hex())
	}
	return s.respond(user)
}

// EnsureAdmin creates the administrator account if no user holds the email yet
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check admin user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.now()
	admin := &models.User{
		Email:              email,
		Name:               "Administrator",
		Password:           string(hashedPassword),
		Role:               models.RoleAdmin,
		SubscriptionStatus: models.SubscriptionSubscribed,
		SubscribedAt:       &now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil && !errors.Is(err, repositories.ErrDuplicateKey) {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	slog.Info("Admin user created", "email", utils.MaskEmail(email))
	return nil
}

// ParseToken validates a token and returns its claims
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := primitive.ObjectIDFromHex(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	now := s.now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &models.AuthResponse{
		Token:     token,
		ExpiresIn: int(s.expiresIn.Seconds()),
		User:      user,
	}, nil
}
