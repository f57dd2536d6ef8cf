package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/auth"
	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"github.com/CoderAaditya/BookBliss-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bcrypt ignores everything past 72 bytes and x/crypto refuses longer input.
const maxPasswordBytes = 72

type AuthConfig struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
}

type AuthService struct {
	users repository.UserRepository
	cfg   AuthConfig
	// dummyHash is compared against on unknown emails so login failures take equally long.
	dummyHash string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	Token string             `json:"token"`
	User  domain.UserSummary `json:"user"`
}

func NewAuthService(users repository.UserRepository, cfg AuthConfig) (*AuthService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = auth.DefaultBcryptCost
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Hour
	}

	dummyHash, err := auth.HashPassword("bookbliss-dummy-password", cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		users:     users,
		cfg:       cfg,
		dummyHash: dummyHash,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, invalidInput("username, email and password are required")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, invalidInput("password must be at most %d bytes", maxPasswordBytes)
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err = s.users.CreateUser(ctx, user); err != nil {
		// the unique indexes catch a concurrent signup with the same email or username
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		_, _ = auth.ComparePassword(s.dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := auth.ComparePassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// VerifyToken resolves a bearer token to the user it was issued for.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	userID, err := auth.GetUserIDFromToken(token, s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed user id", ErrUnauthorized)
	}

	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID.Hex(), s.cfg.Secret, s.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token: token,
		User:  user.Summary(),
	}, nil
}
