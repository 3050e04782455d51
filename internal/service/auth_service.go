package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agartpos/internal/dto"
	"agartpos/internal/middleware"
	"agartpos/internal/model"
	"agartpos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error)
	CreateStaff(ctx context.Context, req dto.CreateStaffRequest) (*dto.StaffResponse, error)
	ListStaff(ctx context.Context) ([]dto.StaffResponse, error)
	DeactivateStaff(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	staff        repository.StaffRepository
	secret       string
	accessHours  int
	refreshHours int
}

func NewAuthService(staff repository.StaffRepository, secret string, accessHours, refreshHours int) AuthService {
	return &authService{
		staff:        staff,
		secret:       secret,
		accessHours:  accessHours,
		refreshHours: refreshHours,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	staff, err := s.staff.FindByUsername(ctx, req.Username)
	if err != nil {
		// Same error whether the user is missing or the password is wrong.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(staff)
}

func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error) {
	claims := &middleware.JWTClaims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid refresh token")
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	// Re-check the account so a deactivated user cannot keep refreshing.
	staff, err := s.staff.FindByID(ctx, id)
	if err != nil || !staff.Active {
		return nil, errors.New("account is no longer active")
	}
	return s.issueTokens(staff)
}

func (s *authService) issueTokens(staff *model.Staff) (*dto.LoginResponse, error) {
	now := timeNow()
	sign := func(hours int) (string, error) {
		claims := middleware.JWTClaims{
			UserID:   staff.ID.String(),
			Username: staff.Username,
			Role:     staff.Role,
			StoreID:  staff.StoreID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(hours) * time.Hour)),
			},
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	}

	access, err := sign(s.accessHours)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := sign(s.refreshHours)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.accessHours * 3600,
		User:         staffToResponse(staff),
	}, nil
}

func (s *authService) CreateStaff(ctx context.Context, req dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("invalid store_id: %w", err)
	}
	if existing, err := s.staff.FindByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("username %q is taken", req.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	staff := &model.Staff{
		StoreID:      storeID,
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, err
	}
	resp := staffToResponse(staff)
	return &resp, nil
}

func (s *authService) ListStaff(ctx context.Context) ([]dto.StaffResponse, error) {
	staff, err := s.staff.List(ctx, false)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StaffResponse, 0, len(staff))
	for i := range staff {
		items = append(items, staffToResponse(&staff[i]))
	}
	return items, nil
}

func (s *authService) DeactivateStaff(ctx context.Context, id uuid.UUID) error {
	return s.staff.Deactivate(ctx, id)
}

func staffToResponse(s *model.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:       s.ID.String(),
		Username: s.Username,
		Name:     s.Name,
		Role:     s.Role,
		StoreID:  s.StoreID.String(),
	}
}
