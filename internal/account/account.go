// Package account registers shop admins and authenticates them.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/logging"
	"go-pos-ledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 10

// TenantStore persists shop admins. A duplicate email is models.ErrConflict.
type TenantStore interface {
	CreateTenant(ctx context.Context, t *models.Tenant) error
	GetTenant(ctx context.Context, id string) (*models.Tenant, error)
	GetTenantByEmail(ctx context.Context, email string) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, id string, u models.TenantUpdate) (*models.Tenant, error)
}

// TokenIssuer is implemented by *auth.TokenManager.
type TokenIssuer interface {
	GenerateToken(tenantID, email string) (string, error)
}

type Service struct {
	tenants TenantStore
	tokens  TokenIssuer
	now     func() time.Time
}

func NewService(tenants TenantStore, tokens TokenIssuer) *Service {
	return &Service{tenants: tenants, tokens: tokens, now: time.Now}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Branch   string `json:"branch"`
	GSTIN    string `json:"GSTIN"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries the editable profile fields. Email and password
// cannot be changed here.
type ProfileUpdate struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	City   string `json:"city"`
	Branch string `json:"branch"`
	GSTIN  string `json:"GSTIN"`
}

type LoginResult struct {
	AccessToken string
	Tenant      *models.Tenant
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Tenant, error) {
	email := normalizeEmail(req.Email)
	for _, v := range []string{req.Name, email, req.Password, req.Phone, req.City, req.Branch, req.GSTIN} {
		if strings.TrimSpace(v) == "" {
			return nil, apperr.Validationf("All fields (name, email, password, phone, city, branch, GSTIN) are mandatory")
		}
	}

	_, err := s.tenants.GetTenantByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Validationf("Admin already exists with this email")
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Server(err, "Failed to register admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return nil, apperr.Server(err, "Failed to hash password")
	}

	now := s.now().UTC()
	t := &models.Tenant{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(req.Phone),
		City:         strings.TrimSpace(req.City),
		Branch:       strings.TrimSpace(req.Branch),
		GSTIN:        strings.TrimSpace(req.GSTIN),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.tenants.CreateTenant(ctx, t); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, models.ErrConflict) {
			return nil, apperr.Validationf("Admin already exists with this email")
		}
		return nil, apperr.Server(err, "Failed to register admin")
	}

	logging.FromContext(ctx).Info("admin_registered", zap.String("tenant_id", t.ID))
	return t, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.Validationf("Email and password are required")
	}

	t, err := s.tenants.GetTenantByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Server(err, "Failed to login")
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(req.Password)) != nil {
		logging.FromContext(ctx).Info("admin_login_rejected")
		return nil, apperr.Unauthorizedf("Invalid Email or Password")
	}

	token, err := s.tokens.GenerateToken(t.ID, t.Email)
	if err != nil {
		return nil, apperr.Server(err, "Failed to generate token")
	}
	return &LoginResult{AccessToken: token, Tenant: t}, nil
}

func (s *Service) Profile(ctx context.Context, tenantID string) (*models.Tenant, error) {
	if tenantID == "" {
		return nil, apperr.Unauthorizedf("User not authorized or token invalid")
	}
	t, err := s.tenants.GetTenant(ctx, tenantID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFoundf("Admin profile not found")
	}
	if err != nil {
		return nil, apperr.Server(err, "Failed to fetch profile")
	}
	return t, nil
}

// UpdateProfile changes the non-empty fields of req.
func (s *Service) UpdateProfile(ctx context.Context, tenantID string, req ProfileUpdate) (*models.Tenant, error) {
	if _, err := s.Profile(ctx, tenantID); err != nil {
		return nil, err
	}

	var u models.TenantUpdate
	set := func(dst **string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = &v
		}
	}
	set(&u.Name, req.Name)
	set(&u.Phone, req.Phone)
	set(&u.City, req.City)
	set(&u.Branch, req.Branch)
	set(&u.GSTIN, req.GSTIN)
	if u.IsEmpty() {
		return nil, apperr.Validationf("No update data provided.")
	}

	t, err := s.tenants.UpdateTenant(ctx, tenantID, u)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFoundf("Admin profile not found")
	}
	if err != nil {
		return nil, apperr.Server(err, "Failed to update profile")
	}
	return t, nil
}
