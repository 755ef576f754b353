package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"labtest-be/internal/auth"
	"labtest-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 6

var staffRoles = []auth.Role{auth.RoleLabTech, auth.RoleAdmin, auth.RoleSuperAdmin}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context, id string) (*User, error)
	CreateStaff(ctx context.Context, actor auth.Identity, in CreateStaffInput) (*User, error)
	ListStaff(ctx context.Context, actor auth.Identity) ([]User, error)
	// EnsureSuperAdmin creates the bootstrap superadmin unless the email is
	// already registered.
	EnsureSuperAdmin(ctx context.Context, email, password string) error
}

type service struct {
	repo   Repository
	secret string
	now    func() time.Time
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{repo: repo, secret: jwtSecret, now: time.Now}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return email, nil
}

func (s *service) newUser(ctx context.Context, name, email, password string, role auth.Role) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) issue(ctx context.Context, u *User) (*Session, error) {
	token, err := auth.GenerateJWT(s.secret, u.Identity())
	if err != nil {
		logger.FromCtx(ctx).Error("failed to generate jwt", zap.String("user_id", u.ID), zap.Error(err))
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	u, err := s.newUser(ctx, in.Name, in.Email, in.Password, auth.RoleCustomer)
	if err != nil {
		log.Info("registration rejected", zap.Error(err))
		return nil, err
	}

	log.Info("register service completed", zap.String("user_id", u.ID))
	return s.issue(ctx, u)
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		log.Error("failed to find user", zap.Error(err))
		return nil, err
	}
	if u == nil || !auth.CheckPasswordHash(password, u.PasswordHash) {
		log.Info("login rejected")
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.TouchLogin(ctx, u.ID, now); err != nil {
		log.Warn("failed to record login time", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}

	return s.issue(ctx, u)
}

func (s *service) Me(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *service) CreateStaff(ctx context.Context, actor auth.Identity, in CreateStaffInput) (*User, error) {
	if actor.Role != auth.RoleSuperAdmin {
		return nil, ErrForbidden
	}
	if in.Role != auth.RoleLabTech && in.Role != auth.RoleAdmin {
		return nil, fmt.Errorf("%w: role must be labtech or admin", ErrInvalidInput)
	}

	u, err := s.newUser(ctx, in.Name, in.Email, in.Password, in.Role)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("staff account created",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
		zap.String("created_by", actor.ID),
	)
	return u, nil
}

func (s *service) ListStaff(ctx context.Context, actor auth.Identity) ([]User, error) {
	if actor.Role != auth.RoleSuperAdmin {
		return nil, ErrForbidden
	}
	return s.repo.ListByRoles(ctx, staffRoles)
}

func (s *service) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	existing, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	u, err := s.newUser(ctx, "Super Admin", email, password, auth.RoleSuperAdmin)
	if err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("bootstrap superadmin created", zap.String("user_id", u.ID))
	return nil
}
