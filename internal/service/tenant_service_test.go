package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Pankajse/YardStick/internal/apperror"
	"github.com/Pankajse/YardStick/internal/model"
	"github.com/Pankajse/YardStick/internal/policy"
	"github.com/Pankajse/YardStick/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

type tenantFixture struct {
	store  *memoryStore
	tokens *jwtutil.JWTUtil
	svc    *TenantService
	logs   *observer.ObservedLogs
}

func newTenantFixture(t *testing.T) *tenantFixture {
	t.Helper()
	st := newMemoryStore()
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-secret", Expiration: time.Hour})
	core, logs := observer.New(zapcore.WarnLevel)
	return &tenantFixture{
		store:  st,
		tokens: tokens,
		svc:    NewTenantService(st, st, policy.NewEngine(policy.DefaultFreeNoteLimit), tokens, bcrypt.MinCost, zap.New(core)),
		logs:   logs,
	}
}

func (f *tenantFixture) adminFor(t *testing.T, slug string) jwtutil.Identity {
	t.Helper()
	ctx := context.Background()
	tenant, err := f.svc.RegisterTenant(ctx, strings.ToUpper(slug), slug)
	require.NoError(t, err)
	user, err := f.svc.BootstrapAdmin(ctx, slug, "admin@"+slug+".test", "password")
	require.NoError(t, err)
	return jwtutil.Identity{UserID: user.ID, TenantID: tenant.ID, Role: "ADMIN", TenantSlug: slug}
}

func TestRegisterTenant(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()

	tenant, err := f.svc.RegisterTenant(ctx, "Acme Corp", "acme")
	require.NoError(t, err)
	assert.NotEmpty(t, tenant.ID)
	assert.Equal(t, model.PlanFree, tenant.Plan)

	_, err = f.svc.RegisterTenant(ctx, "Acme Again", "acme")
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, "Tenant slug already exists", apperror.Message(err))
}

func TestRegisterTenantValidation(t *testing.T) {
	f := newTenantFixture(t)

	tests := []struct {
		name, tenant, slug, message string
	}{
		{"missing name", "", "acme", "Name and slug required"},
		{"missing slug", "Acme", "", "Name and slug required"},
		{"blank name", "   ", "acme", "Name and slug required"},
		{"uppercase slug", "Acme", "Acme", "Slug must be lowercase letters, digits and hyphens"},
		{"slug with space", "Acme", "acme corp", "Slug must be lowercase letters, digits and hyphens"},
		{"slug with slash", "Acme", "acme/x", "Slug must be lowercase letters, digits and hyphens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RegisterTenant(context.Background(), tt.tenant, tt.slug)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
			assert.Equal(t, tt.message, apperror.Message(err))
		})
	}
}

func TestInviteUser(t *testing.T) {
	f := newTenantFixture(t)
	admin := f.adminFor(t, "acme")

	user, tenant, err := f.svc.InviteUser(context.Background(), admin, InviteInput{
		Email: "member@acme.test", Password: "pw", Role: "MEMBER", TenantSlug: "acme",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, user.Role)
	assert.Equal(t, "acme", tenant.Slug)
	assert.Equal(t, tenant.ID, user.TenantID)
	assert.NotEqual(t, "pw", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("pw")))
}

func TestInviteUserDenied(t *testing.T) {
	f := newTenantFixture(t)
	admin := f.adminFor(t, "acme")
	member := admin
	member.Role = "MEMBER"

	valid := InviteInput{Email: "x@acme.test", Password: "pw", Role: "MEMBER", TenantSlug: "acme"}

	tests := []struct {
		name     string
		identity jwtutil.Identity
		input    InviteInput
		kind     apperror.Kind
		message  string
	}{
		{"member caller", member, valid, apperror.KindForbidden, "Only Admin can invite users"},
		{"missing email", admin, InviteInput{Password: "pw", Role: "MEMBER", TenantSlug: "acme"}, apperror.KindValidation, "Email, password and tenantSlug required"},
		{"unknown role", admin, InviteInput{Email: "x@acme.test", Password: "pw", Role: "OWNER", TenantSlug: "acme"}, apperror.KindValidation, "Role must be ADMIN or MEMBER"},
		{"unknown tenant", admin, InviteInput{Email: "x@acme.test", Password: "pw", Role: "MEMBER", TenantSlug: "nope"}, apperror.KindNotFound, "Tenant not found"},
		{"duplicate email", admin, InviteInput{Email: "admin@acme.test", Password: "pw", Role: "MEMBER", TenantSlug: "acme"}, apperror.KindConflict, "Email already registered"},
		{"password too long", admin, InviteInput{Email: "y@acme.test", Password: strings.Repeat("p", 73), Role: "MEMBER", TenantSlug: "acme"}, apperror.KindValidation, "Password must be at most 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.svc.InviteUser(context.Background(), tt.identity, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
			assert.Equal(t, tt.message, apperror.Message(err))
		})
	}
}

func TestInviteUserIntoAnotherTenant(t *testing.T) {
	f := newTenantFixture(t)
	admin := f.adminFor(t, "acme")
	_, err := f.svc.RegisterTenant(context.Background(), "Globex", "globex")
	require.NoError(t, err)

	user, tenant, err := f.svc.InviteUser(context.Background(), admin, InviteInput{
		Email: "spy@globex.test", Password: "pw", Role: "ADMIN", TenantSlug: "globex",
	})
	require.NoError(t, err)
	assert.Equal(t, "globex", tenant.Slug)
	assert.Equal(t, tenant.ID, user.TenantID)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	f := newTenantFixture(t)
	admin := f.adminFor(t, "acme")

	token, err := f.svc.Login(context.Background(), "admin@acme.test", "password")
	require.NoError(t, err)

	claims, err := f.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin, claims.Identity)
}

func TestLoginTrimsEmailLikeInvite(t *testing.T) {
	f := newTenantFixture(t)
	admin := f.adminFor(t, "acme")
	ctx := context.Background()

	user, _, err := f.svc.InviteUser(ctx, admin, InviteInput{
		Email: "  pad@acme.test ", Password: "pw", Role: "MEMBER", TenantSlug: "acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "pad@acme.test", user.Email)

	for _, email := range []string{"  pad@acme.test ", "pad@acme.test"} {
		token, err := f.svc.Login(ctx, email, "pw")
		require.NoError(t, err, email)
		claims, err := f.tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	}

	_, err = f.svc.Login(ctx, "   ", "pw")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestLoginFailures(t *testing.T) {
	f := newTenantFixture(t)
	f.adminFor(t, "acme")
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "", "password")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, "Email and password required", apperror.Message(err))

	_, unknownErr := f.svc.Login(ctx, "ghost@acme.test", "password")
	_, wrongErr := f.svc.Login(ctx, "admin@acme.test", "wrong")

	assert.True(t, apperror.Is(unknownErr, apperror.KindInvalidCredentials))
	assert.True(t, apperror.Is(wrongErr, apperror.KindInvalidCredentials))
	assert.Equal(t, apperror.Message(unknownErr), apperror.Message(wrongErr))
	assert.Equal(t, "Invalid credentials", apperror.Message(wrongErr))
}

func TestUpgradeTenant(t *testing.T) {
	f := newTenantFixture(t)
	admin := f.adminFor(t, "acme")
	ctx := context.Background()

	tenant, err := f.svc.UpgradeTenant(ctx, admin, "acme")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, tenant.Plan)

	again, err := f.svc.UpgradeTenant(ctx, admin, "acme")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, again.Plan)

	stored, err := f.store.GetTenantBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, stored.Plan)
	assert.Zero(t, f.logs.Len())
}

func TestUpgradeTenantDenied(t *testing.T) {
	f := newTenantFixture(t)
	admin := f.adminFor(t, "acme")
	member := admin
	member.Role = "MEMBER"

	_, err := f.svc.UpgradeTenant(context.Background(), member, "acme")
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	assert.Equal(t, "Only Admin can upgrade plan", apperror.Message(err))

	_, err = f.svc.UpgradeTenant(context.Background(), admin, "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpgradeOtherTenantIsLogged(t *testing.T) {
	f := newTenantFixture(t)
	admin := f.adminFor(t, "acme")
	f.adminFor(t, "globex")

	tenant, err := f.svc.UpgradeTenant(context.Background(), admin, "globex")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, tenant.Plan)

	entries := f.logs.FilterField(zap.String("target_tenant", "globex")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestBootstrapAdmin(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()

	_, err := f.svc.BootstrapAdmin(ctx, "nope", "a@b.test", "pw")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.svc.BootstrapAdmin(ctx, "", "a@b.test", "pw")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.RegisterTenant(ctx, "Acme", "acme")
	require.NoError(t, err)
	user, err := f.svc.BootstrapAdmin(ctx, "acme", " a@b.test\n", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.Equal(t, "a@b.test", user.Email)
}
