package service

import (
	"context"
	"errors"

	"github.com/Pankajse/YardStick/internal/apperror"
	"github.com/Pankajse/YardStick/internal/model"
	"github.com/Pankajse/YardStick/internal/policy"
	"github.com/Pankajse/YardStick/internal/store"
	"github.com/Pankajse/YardStick/pkg/jwtutil"
)

// NoteInput is the client-writable part of a note
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteUpdate is a partial edit; nil fields keep their stored value
type NoteUpdate struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// NoteService manages notes on behalf of a verified identity
type NoteService struct {
	tenants store.TenantStore
	notes   store.NoteStore
	policy  *policy.Engine
}

func NewNoteService(tenants store.TenantStore, notes store.NoteStore, engine *policy.Engine) *NoteService {
	return &NoteService{tenants: tenants, notes: notes, policy: engine}
}

// Create stores a note in the caller's tenant after the plan quota check.
// Count and insert are separate statements, so concurrent creates on a FREE
// tenant may overshoot the limit.
func (s *NoteService) Create(ctx context.Context, identity jwtutil.Identity, input NoteInput) (*model.Note, error) {
	tenant, err := s.tenants.GetTenantByID(ctx, identity.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("Tenant not found")
		}
		return nil, apperror.Internal(err)
	}

	count, err := s.notes.CountNotes(ctx, tenant.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.policy.CanCreateNote(tenant, count); err != nil {
		return nil, err
	}

	note := &model.Note{
		Title:     input.Title,
		Content:   input.Content,
		TenantID:  tenant.ID,
		CreatedBy: identity.UserID,
	}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, apperror.Internal(err)
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, identity jwtutil.Identity) ([]model.Note, error) {
	notes, err := s.notes.ListNotes(ctx, identity.TenantID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

func (s *NoteService) Get(ctx context.Context, identity jwtutil.Identity, id string) (*model.Note, error) {
	return s.load(ctx, identity, id)
}

// Update applies the fields present in input to a note owned by the caller's tenant
func (s *NoteService) Update(ctx context.Context, identity jwtutil.Identity, id string, input NoteUpdate) (*model.Note, error) {
	note, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	if err := s.notes.UpdateNote(ctx, note); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("Note not found")
		}
		return nil, apperror.Internal(err)
	}

	return s.load(ctx, identity, id)
}

func (s *NoteService) Delete(ctx context.Context, identity jwtutil.Identity, id string) error {
	if _, err := s.load(ctx, identity, id); err != nil {
		return err
	}
	if err := s.notes.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NotFound("Note not found")
		}
		return apperror.Internal(err)
	}
	return nil
}

// load fetches a note and applies the tenant check; missing and foreign
// notes are indistinguishable to the caller.
func (s *NoteService) load(ctx context.Context, identity jwtutil.Identity, id string) (*model.Note, error) {
	note, err := s.notes.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("Note not found")
		}
		return nil, apperror.Internal(err)
	}
	if err := s.policy.CanAccessNote(identity, note); err != nil {
		return nil, err
	}
	return note, nil
}
