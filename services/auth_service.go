package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/utils"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

const minPasswordLength = 8

type RegisterUserInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type AuthService interface {
	// Login проверяет пароль и выдаёт JWT с user_id и is_admin.
	Login(ctx context.Context, creds models.Credentials) (string, *models.User, error)
	RegisterUser(ctx context.Context, input RegisterUserInput) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetAdminFlag(ctx context.Context, actorID, userID string, isAdmin bool) (*models.User, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret []byte) AuthService {
	return &authService{userRepo: userRepo, jwtSecret: jwtSecret}
}

func (s *authService) Login(ctx context.Context, creds models.Credentials) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Та же ошибка, что и при неверном пароле: не раскрываем,
			// существует ли аккаунт.
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}

func (s *authService) RegisterUser(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidationFailed)
	}
	if input.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidationFailed)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *authService) SetAdminFlag(ctx context.Context, actorID, userID string, isAdmin bool) (*models.User, error) {
	// Админ не может снять права с самого себя, иначе бэк-офис
	// рискует остаться без единого администратора.
	if actorID == userID && !isAdmin {
		return nil, ErrForbiddenOperation
	}

	if err := s.userRepo.UpdateAdminFlag(ctx, userID, isAdmin); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}
