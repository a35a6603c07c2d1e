package handler

import (
	"github.com/Pankajse/YardStick/internal/apperror"
	"github.com/Pankajse/YardStick/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError writes {"message": ...} with the status of the error's kind.
// Internal errors are logged and replaced with a generic message.
func respondError(c echo.Context, err error) error {
	kind := apperror.KindOf(err)
	log := logger.FromContext(c)

	if kind == apperror.KindInternal {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Info("Request rejected", zap.String("kind", kind.String()), zap.String("reason", apperror.Message(err)))
	}

	return c.JSON(kind.Status(), echo.Map{"message": apperror.Message(err)})
}

func invalidBody(c echo.Context, err error) error {
	logger.FromContext(c).Warn("Failed to parse request body", zap.Error(err))
	return respondError(c, apperror.Validation("Invalid request body"))
}

// missingIdentity answers a protected route reached without the auth middleware
func missingIdentity(c echo.Context) error {
	return respondError(c, apperror.Unauthenticated("No token"))
}
