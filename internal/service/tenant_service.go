package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/Pankajse/YardStick/internal/apperror"
	"github.com/Pankajse/YardStick/internal/model"
	"github.com/Pankajse/YardStick/internal/policy"
	"github.com/Pankajse/YardStick/internal/store"
	"github.com/Pankajse/YardStick/pkg/jwtutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// InviteInput describes a user created by an ADMIN
type InviteInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	TenantSlug string `json:"tenantSlug"`
}

// TenantService provisions tenants and users and issues tokens
type TenantService struct {
	tenants    store.TenantStore
	users      store.UserStore
	policy     *policy.Engine
	tokens     *jwtutil.JWTUtil
	bcryptCost int
	log        *zap.Logger
}

func NewTenantService(
	tenants store.TenantStore,
	users store.UserStore,
	engine *policy.Engine,
	tokens *jwtutil.JWTUtil,
	bcryptCost int,
	log *zap.Logger,
) *TenantService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TenantService{
		tenants:    tenants,
		users:      users,
		policy:     engine,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// RegisterTenant creates a FREE tenant. It requires no identity.
func (s *TenantService) RegisterTenant(ctx context.Context, name, slug string) (*model.Tenant, error) {
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(slug)
	if name == "" || slug == "" {
		return nil, apperror.Validation("Name and slug required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, apperror.Validation("Slug must be lowercase letters, digits and hyphens")
	}

	tenant := &model.Tenant{Name: name, Slug: slug, Plan: model.PlanFree}
	if err := s.tenants.CreateTenant(ctx, tenant); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperror.Conflict("Tenant slug already exists")
		}
		return nil, apperror.Internal(err)
	}
	return tenant, nil
}

// InviteUser creates a user in the tenant named by input.TenantSlug. The slug
// may name any tenant, not only the inviter's.
func (s *TenantService) InviteUser(ctx context.Context, identity jwtutil.Identity, input InviteInput) (*model.User, *model.Tenant, error) {
	if err := s.policy.CanInviteUser(identity); err != nil {
		return nil, nil, err
	}

	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" || input.Password == "" || input.TenantSlug == "" {
		return nil, nil, apperror.Validation("Email, password and tenantSlug required")
	}
	role := model.Role(input.Role)
	if !role.Valid() {
		return nil, nil, apperror.Validation("Role must be ADMIN or MEMBER")
	}

	tenant, err := s.tenants.GetTenantBySlug(ctx, input.TenantSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, apperror.NotFound("Tenant not found")
		}
		return nil, nil, apperror.Internal(err)
	}

	user, err := s.createUser(ctx, tenant, input.Email, input.Password, role)
	if err != nil {
		return nil, nil, err
	}
	return user, tenant, nil
}

// Login verifies the credentials and issues a token carrying the user's
// current role and tenant.
func (s *TenantService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", apperror.Validation("Email and password required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperror.InvalidCredentials()
		}
		return "", apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperror.InvalidCredentials()
	}

	tenant, err := s.tenants.GetTenantByID(ctx, user.TenantID)
	if err != nil {
		return "", apperror.Internal(err)
	}

	token, err := s.tokens.GenerateToken(jwtutil.Identity{
		UserID:     user.ID,
		TenantID:   tenant.ID,
		Role:       string(user.Role),
		TenantSlug: tenant.Slug,
	})
	if err != nil {
		return "", apperror.Internal(err)
	}
	return token, nil
}

// UpgradeTenant moves the tenant to PRO. Upgrading a PRO tenant is a no-op.
func (s *TenantService) UpgradeTenant(ctx context.Context, identity jwtutil.Identity, slug string) (*model.Tenant, error) {
	if err := s.policy.CanUpgradePlan(identity, slug); err != nil {
		return nil, err
	}
	if s.policy.IsCrossTenant(identity, slug) {
		s.log.Warn("Admin upgrading a tenant other than their own",
			zap.String("user_id", identity.UserID),
			zap.String("own_tenant", identity.TenantSlug),
			zap.String("target_tenant", slug))
	}

	tenant, err := s.tenants.GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("Tenant not found")
		}
		return nil, apperror.Internal(err)
	}

	if tenant.Plan != model.PlanPro {
		if err := s.tenants.UpdateTenantPlan(ctx, tenant.ID, model.PlanPro); err != nil {
			return nil, apperror.Internal(err)
		}
		tenant.Plan = model.PlanPro
	}
	return tenant, nil
}

// BootstrapAdmin creates the first ADMIN of an existing tenant. It bypasses
// the policy engine and is only reachable from operator tooling.
func (s *TenantService) BootstrapAdmin(ctx context.Context, slug, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if slug == "" || email == "" || password == "" {
		return nil, apperror.Validation("Slug, email and password required")
	}

	tenant, err := s.tenants.GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("Tenant not found")
		}
		return nil, apperror.Internal(err)
	}

	return s.createUser(ctx, tenant, email, password, model.RoleAdmin)
}

func (s *TenantService) createUser(ctx context.Context, tenant *model.Tenant, email, password string, role model.Role) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.Validation("Password must be at most 72 bytes")
		}
		return nil, apperror.Internal(err)
	}

	user := &model.User{
		Email:    email,
		Password: string(hash),
		Role:     role,
		TenantID: tenant.ID,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperror.Conflict("Email already registered")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
