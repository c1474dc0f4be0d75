package service

import (
	"context"
	"errors"
	"fmt"

	"huntserver/internal/common"
	"huntserver/internal/common/security"
	"huntserver/internal/domain/model"
	"huntserver/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	personRepo repository.PersonRepository
}

func NewAuthService(personRepo repository.PersonRepository) *AuthService {
	return &AuthService{personRepo: personRepo}
}

type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Allergies string `json:"allergies"`
	Comments  string `json:"comments"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // Can be username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	Person *model.Person `json:"person"`
	Token  string        `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	person := &model.Person{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Phone:          req.Phone,
		Allergies:      req.Allergies,
		Comments:       req.Comments,
	}

	if err := s.personRepo.Create(ctx, person); err != nil {
		// Repo returns common.ErrConflict on duplicate username/email
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	token, err := security.GenerateToken(person.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	person.HashedPassword = ""
	return &AuthResponse{Person: person, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.LoginField == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	person, err := s.personRepo.FindByEmail(ctx, req.LoginField)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			person, err = s.personRepo.FindByUsername(ctx, req.LoginField)
		}
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find person: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, person.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(person.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	person.HashedPassword = ""
	return &AuthResponse{Person: person, Token: token}, nil
}
