package supplier

import (
	"context"
	"errors"
	"strings"

	"rawmart-be/internal/auth"
	"rawmart-be/internal/logger"
	"rawmart-be/internal/utils"

	"go.uber.org/zap"
)

type TokenIssuer interface {
	Issue(accountID uint, email, role string) (string, error)
}

type Service interface {
	Register(ctx context.Context, params RegisterParams) (string, *Supplier, error)
	Login(ctx context.Context, email, password string) (string, *Supplier, error)
	GetProfile(ctx context.Context, id uint) (*Supplier, error)
	UpdateProfile(ctx context.Context, id uint, params UpdateProfileParams) (*Supplier, error)
}

type service struct {
	repo   Repository
	issuer TokenIssuer
}

func NewService(repo Repository, issuer TokenIssuer) Service {
	return &service{repo: repo, issuer: issuer}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, params RegisterParams) (string, *Supplier, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "supplier.Service.Register"))

	hashed, err := auth.HashPassword(params.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	sup, err := s.repo.Create(ctx, &Supplier{
		Name:         strings.TrimSpace(params.Name),
		Email:        normalizeEmail(params.Email),
		Password:     hashed,
		BusinessName: strings.TrimSpace(params.BusinessName),
		Phone:        strings.TrimSpace(params.Phone),
		Address:      params.Address,
		City:         params.City,
		State:        params.State,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.issuer.Issue(sup.ID, sup.Email, utils.RoleSupplier)
	if err != nil {
		log.Error("failed to issue session", zap.Uint("supplier_id", sup.ID), zap.Error(err))
		return "", nil, err
	}

	log.Info("supplier registered", zap.Uint("supplier_id", sup.ID))
	return token, sup, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *Supplier, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "supplier.Service.Login"))

	sup, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrSupplierNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !auth.CheckPasswordHash(password, sup.Password) {
		log.Info("password mismatch", zap.Uint("supplier_id", sup.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(sup.ID, sup.Email, utils.RoleSupplier)
	if err != nil {
		return "", nil, err
	}
	return token, sup, nil
}

func (s *service) GetProfile(ctx context.Context, id uint) (*Supplier, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id uint, params UpdateProfileParams) (*Supplier, error) {
	return s.repo.UpdateProfile(ctx, id, params)
}
