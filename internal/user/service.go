package user

import (
	"context"
	"errors"

	"rawmart-be/internal/auth"
	"rawmart-be/internal/logger"
	"rawmart-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, params RegisterParams) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
}

type service struct {
	repo   Repository
	issuer TokenIssuer
}

func NewService(repo Repository, issuer TokenIssuer) Service {
	return &service{repo: repo, issuer: issuer}
}

func (s *service) Register(ctx context.Context, params RegisterParams) (string, *User, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "user.Service.Register"))

	hashed, err := auth.HashPassword(params.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	u, err := s.repo.Create(ctx, &User{
		Name:      params.Name,
		Email:     NormalizeEmail(params.Email),
		Password:  hashed,
		Phone:     params.Phone,
		StallName: params.StallName,
		Location:  params.Location,
		Role:      utils.RoleVendor,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.issuer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		log.Error("failed to issue session", zap.Uint("user_id", u.ID), zap.Error(err))
		return "", nil, err
	}

	log.Info("vendor registered", zap.Uint("user_id", u.ID))
	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "user.Service.Login"))

	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("login for unknown email")
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !auth.CheckPasswordHash(password, u.Password) {
		log.Info("password mismatch", zap.Uint("user_id", u.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
