package handler

import (
	"net/http"

	"github.com/Pankajse/YardStick/internal/middleware"
	"github.com/Pankajse/YardStick/internal/service"
	"github.com/Pankajse/YardStick/pkg/logger"
	"github.com/Pankajse/YardStick/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TenantHandler struct {
	tenants *service.TenantService
}

func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// RegisterTenant handles POST /tenant
func (h *TenantHandler) RegisterTenant(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}

	tenant, err := h.tenants.RegisterTenant(c.Request().Context(), req.Name, req.Slug)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.TenantRegisterCounter.Inc()
	log.Info("Tenant registered",
		zap.String("tenant_id", tenant.ID),
		zap.String("slug", tenant.Slug))

	return c.JSON(http.StatusOK, echo.Map{
		"tenantId": tenant.ID,
		"name":     tenant.Name,
		"slug":     tenant.Slug,
	})
}

// InviteUser handles POST /users
func (h *TenantHandler) InviteUser(c echo.Context) error {
	log := logger.FromContext(c)

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return missingIdentity(c)
	}

	var req service.InviteInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}

	user, tenant, err := h.tenants.InviteUser(c.Request().Context(), identity, req)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.UserInviteCounter.Inc()
	log.Info("User invited",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("tenant", tenant.Slug))

	return c.JSON(http.StatusOK, echo.Map{
		"id":     user.ID,
		"email":  user.Email,
		"role":   user.Role,
		"tenant": tenant.Slug,
	})
}

// UpgradeTenant handles POST /tenants/:slug/upgrade
func (h *TenantHandler) UpgradeTenant(c echo.Context) error {
	log := logger.FromContext(c)

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return missingIdentity(c)
	}

	tenant, err := h.tenants.UpgradeTenant(c.Request().Context(), identity, c.Param("slug"))
	if err != nil {
		return respondError(c, err)
	}

	prometheus.TenantUpgradeCounter.Inc()
	log.Info("Tenant upgraded", zap.String("tenant", tenant.Slug))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Tenant upgraded to PRO",
		"tenant":  tenant,
	})
}
