package service

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"cdr-backend-V1.0/internal/apperr"
	"cdr-backend-V1.0/internal/model"
	"cdr-backend-V1.0/internal/repository"
)

const bcryptCost = 10

// AuthService interface
type AuthService interface {
	Register(user *model.User, password string) error
	Login(email, password string) (*model.User, error)
	GetProfile(userID uint) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
}

// NewAuthService initializes authentication service
func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(user *model.User, password string) error {
	if strings.TrimSpace(user.Name) == "" || strings.TrimSpace(user.Email) == "" || password == "" {
		return apperr.Validation("name, email, and password required")
	}

	existing, err := s.userRepo.GetUserByEmail(user.Email)
	if err != nil {
		return apperr.Storage("failed to check existing user", err)
	}
	if existing != nil {
		return apperr.Validation("user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return apperr.Storage("failed to hash password", err)
	}
	user.PasswordHash = string(hash)

	if err := s.userRepo.CreateUser(user); err != nil {
		return apperr.Storage("failed to store user", err)
	}
	return nil
}

func (s *authService) Login(email, password string) (*model.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email and password required")
	}

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, apperr.Storage("failed to look up user", err)
	}
	if user == nil {
		return nil, apperr.Authentication("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Authentication("invalid credentials")
	}
	return user, nil
}

func (s *authService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, apperr.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}
