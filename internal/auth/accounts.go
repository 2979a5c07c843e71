package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

// AccountService manages back-office accounts.
type AccountService interface {
	List(ctx context.Context) ([]AccountDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*AccountDTO, error)
	Create(ctx context.Context, req CreateAccountRequest) (*AccountDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateAccountRequest) (*AccountDTO, error)
	ToggleActive(ctx context.Context, id, actorID uuid.UUID) (*AccountDTO, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

type accountService struct {
	repo        Repository
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

func NewAccountService(repo Repository, passwordCfg config.PasswordConfig) (AccountService, error) {
	if repo == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	return &accountService{repo: repo, passwordCfg: passwordCfg, now: time.Now}, nil
}

func (s *accountService) List(ctx context.Context) ([]AccountDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	out := make([]AccountDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToDTO(row))
	}
	return out, nil
}

func (s *accountService) Get(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	account, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*account)
	return &dto, nil
}

func (s *accountService) Create(ctx context.Context, req CreateAccountRequest) (*AccountDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
			WithDetails(map[string]string{"role": "must be one of admin, manager, temporary"})
	}
	expiresAt, err := s.expiry(req.Role, req.ExpiresInDays, nil)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	account := &models.Account{
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
		ExpiresAt:    expiresAt,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	dto := ToDTO(*account)
	return &dto, nil
}

func (s *accountService) Update(ctx context.Context, id uuid.UUID, req UpdateAccountRequest) (*AccountDTO, error) {
	account, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
		}
		updates["email"] = email
	}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
		}
		updates["password_hash"] = hash
	}
	role := account.Role
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		role = *req.Role
		updates["role"] = role
	}
	if req.Role != nil || req.ExpiresInDays != nil {
		expiresAt, err := s.expiry(role, req.ExpiresInDays, account.ExpiresAt)
		if err != nil {
			return nil, err
		}
		updates["expires_at"] = expiresAt
	}
	if len(updates) == 0 {
		dto := ToDTO(*account)
		return &dto, nil
	}

	if _, err := s.repo.Update(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account")
	}
	return s.Get(ctx, id)
}

func (s *accountService) ToggleActive(ctx context.Context, id, actorID uuid.UUID) (*AccountDTO, error) {
	if id == actorID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
	}
	account, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Update(ctx, id, map[string]any{"is_active": !account.IsActive}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle account")
	}
	return s.Get(ctx, id)
}

func (s *accountService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if id == actorID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete account")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return nil
}

// EnsureAdmin creates an admin account when no account exists yet.
func (s *accountService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count accounts")
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.Create(ctx, CreateAccountRequest{Email: email, Password: password, Role: enums.AccountRoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}

// expiry resolves the expiry of an account with role. Only temporary accounts expire.
func (s *accountService) expiry(role enums.AccountRole, days *int, current *time.Time) (*time.Time, error) {
	if role != enums.AccountRoleTemporary {
		return nil, nil
	}
	if days == nil {
		if current != nil {
			return current, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "temporary accounts require expires_in_days").
			WithDetails(map[string]string{"expires_in_days": "is required for temporary accounts"})
	}
	if *days < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expires_in_days must be at least 1")
	}
	at := s.now().UTC().Add(time.Duration(*days) * 24 * time.Hour)
	return &at, nil
}

func (s *accountService) find(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}
