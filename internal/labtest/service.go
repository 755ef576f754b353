package labtest

import (
	"context"

	"labtest-be/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Service interface {
	Get(ctx context.Context, id string) (*Test, error)
	List(ctx context.Context, filter ListFilter) ([]Test, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Test, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, id string) (*Test, error) {
	t, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTestNotFound
	}
	return t, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Test, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, params UpdateParams) (*Test, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.String("test_id", id),
	)

	if params.IsEmpty() {
		return nil, ErrNoUpdateField
	}
	if params.Price != nil && *params.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if params.Status != nil && *params.Status != StatusActive && *params.Status != StatusDisabled {
		return nil, ErrInvalidStatus
	}

	t, err := s.repo.Update(ctx, id, params)
	if err != nil {
		log.Warn("update lab test failed", zap.Error(err))
		return nil, err
	}

	log.Info("lab test updated")
	return t, nil
}
