package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/votetrack/votetrack/internal/mailer"
	"github.com/votetrack/votetrack/internal/models"
	"github.com/votetrack/votetrack/internal/repository"
)

const tokenTTL = 24 * time.Hour

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type AuthService struct {
	users  repository.UserRepository
	mail   mailer.Mailer
	secret []byte
	log    *zap.Logger
}

func NewAuthService(users repository.UserRepository, mail mailer.Mailer, jwtSecret string, log *zap.Logger) *AuthService {
	return &AuthService{users: users, mail: mail, secret: []byte(jwtSecret), log: log}
}

// Register creates an account with the default role and a pending
// confirmation token, then dispatches the confirmation email without waiting
// for it. Hashing happens here, before the persist, never in a storage hook.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(input.Name),
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		Password:          string(hashed),
		Roles:             []string{models.RoleRegularUser},
		EmailConfirmed:    false,
		ConfirmationToken: uuid.New().String(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("email", user.Email))

	go func(email, token string) {
		if err := s.mail.SendConfirmation(email, token); err != nil {
			s.log.Warn("confirmation email failed", zap.String("email", email), zap.Error(err))
		}
	}(user.Email, user.ConfirmationToken)

	return user, nil
}

// Login verifies credentials and issues a signed token. An unconfirmed email
// is rejected before the password is even compared.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == repository.ErrNotFound {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if !user.EmailConfirmed {
		return "", ErrEmailNotConfirmed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return "", err
	}
	s.log.Info("user logged in", zap.String("user_id", user.ID))
	return token, nil
}

// ConfirmEmail marks the account confirmed and retires the token.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	user, err := s.users.ByConfirmationToken(ctx, token)
	if err == repository.ErrNotFound {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}

	user.EmailConfirmed = true
	user.ConfirmationToken = ""
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	s.log.Info("email confirmed", zap.String("user_id", user.ID))
	return nil
}

// ResendConfirmation re-sends the pending confirmation link for an account.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == repository.ErrNotFound {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if user.ConfirmationToken == "" {
		return fmt.Errorf("%w: Email is already confirmed", ErrValidation)
	}
	return s.mail.SendConfirmation(user.Email, user.ConfirmationToken)
}

// SignToken issues an HS256 token carrying the user id, valid for 24 hours.
func (s *AuthService) SignToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken verifies a token and returns the user id it carries.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", ErrInvalidToken
	}
	return id, nil
}
