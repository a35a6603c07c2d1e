package handler

import (
	"net/http"

	"github.com/Pankajse/YardStick/internal/apperror"
	"github.com/Pankajse/YardStick/internal/service"
	"github.com/Pankajse/YardStick/pkg/logger"
	"github.com/Pankajse/YardStick/prometheus"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	tenants *service.TenantService
}

func NewAuthHandler(tenants *service.TenantService) *AuthHandler {
	return &AuthHandler{tenants: tenants}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return invalidBody(c, err)
	}

	token, err := h.tenants.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if apperror.Is(err, apperror.KindInvalidCredentials) {
			prometheus.RecordAuthError("invalid_credentials")
		}
		return respondError(c, err)
	}

	log.Info("User logged in")
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
