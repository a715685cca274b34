package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pizzatrack/internal/auth"
	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
)

type UserService interface {
	CreateUser(ctx context.Context, user *models.AppUser, password string) error
	GetUserByUsername(ctx context.Context, username string) (*models.AppUser, error)
	GetAllUsers(ctx context.Context) ([]models.AppUser, error)
	DeleteUser(ctx context.Context, id string) error
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *models.AppUser `json:"user"`
}

type userService struct {
	userRepo repository.UserRepository
	tokens   *auth.Manager
}

// NewUserService accepts a nil token manager for tools that only manage
// accounts; Login then fails.
func NewUserService(userRepo repository.UserRepository, tokens *auth.Manager) UserService {
	return &userService{userRepo: userRepo, tokens: tokens}
}

func (s *userService) CreateUser(ctx context.Context, user *models.AppUser, password string) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return validationError("username is required")
	}
	if len(password) < 6 {
		return validationError("password must have at least 6 characters")
	}
	if !user.Role.Valid() {
		return validationError("unknown role %q", user.Role)
	}
	if user.Role == models.RoleDeliverer && (user.DelivererID == nil || *user.DelivererID == "") {
		return validationError("deliverer accounts must reference a deliverer")
	}
	if _, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check username: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return s.userRepo.Create(ctx, user)
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.AppUser, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *userService) GetAllUsers(ctx context.Context) ([]models.AppUser, error) {
	return s.userRepo.GetAll(ctx)
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	err := s.userRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

// Login checks the password and issues a token. Unknown users and wrong
// passwords produce the same error.
func (s *userService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if s.tokens == nil {
		return nil, errors.New("token manager not configured")
	}
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
