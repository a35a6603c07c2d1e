package handler

import (
	"net/http"

	"github.com/Pankajse/YardStick/internal/apperror"
	"github.com/Pankajse/YardStick/internal/middleware"
	"github.com/Pankajse/YardStick/internal/service"
	"github.com/Pankajse/YardStick/pkg/logger"
	"github.com/Pankajse/YardStick/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type NoteHandler struct {
	notes *service.NoteService
}

func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

func (h *NoteHandler) CreateNote(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return missingIdentity(c)
	}

	var req service.NoteInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}

	note, err := h.notes.Create(c.Request().Context(), identity, req)
	if err != nil {
		if apperror.Is(err, apperror.KindQuotaExceeded) {
			prometheus.RecordQuotaExceeded("FREE")
		}
		return respondError(c, err)
	}

	prometheus.RecordNoteOperation("create")
	logger.FromContext(c).Info("Note created", zap.String("note_id", note.ID))
	return c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) ListNotes(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return missingIdentity(c)
	}

	notes, err := h.notes.List(c.Request().Context(), identity)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordNoteOperation("list")
	return c.JSON(http.StatusOK, notes)
}

func (h *NoteHandler) GetNote(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return missingIdentity(c)
	}

	note, err := h.notes.Get(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordNoteOperation("get")
	return c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) UpdateNote(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return missingIdentity(c)
	}

	var req service.NoteUpdate
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}

	note, err := h.notes.Update(c.Request().Context(), identity, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordNoteOperation("update")
	logger.FromContext(c).Info("Note updated", zap.String("note_id", note.ID))
	return c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) DeleteNote(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return missingIdentity(c)
	}

	id := c.Param("id")
	if err := h.notes.Delete(c.Request().Context(), identity, id); err != nil {
		return respondError(c, err)
	}

	prometheus.RecordNoteOperation("delete")
	logger.FromContext(c).Info("Note deleted", zap.String("note_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Note deleted"})
}
