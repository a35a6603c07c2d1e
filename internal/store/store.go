// Package store persists tenants, users and notes through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pankajse/YardStick/internal/model"
	"github.com/Pankajse/YardStick/prometheus"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// TenantStore reads and writes tenants
type TenantStore interface {
	CreateTenant(ctx context.Context, tenant *model.Tenant) error
	GetTenantByID(ctx context.Context, id string) (*model.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	UpdateTenantPlan(ctx context.Context, id string, plan model.Plan) error
}

// UserStore reads and writes users
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// NoteStore reads and writes notes
type NoteStore interface {
	CreateNote(ctx context.Context, note *model.Note) error
	CountNotes(ctx context.Context, tenantID string) (int64, error)
	ListNotes(ctx context.Context, tenantID string) ([]model.Note, error)
	GetNote(ctx context.Context, id string) (*model.Note, error)
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, id string) error
}

// GormStore implements every store interface on a single gorm pool
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Ping checks that the database is reachable
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (s *GormStore) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := s.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return fmt.Errorf("create tenant %q: %w", tenant.Slug, translate(err))
	}
	return nil
}

func (s *GormStore) GetTenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenant model.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("get tenant %q: %w", id, translate(err))
	}
	return &tenant, nil
}

func (s *GormStore) GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenant model.Tenant
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("get tenant by slug %q: %w", slug, translate(err))
	}
	return &tenant, nil
}

func (s *GormStore) UpdateTenantPlan(ctx context.Context, id string, plan model.Plan) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	result := s.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", id).Update("plan", plan)
	if result.Error != nil {
		return fmt.Errorf("update tenant plan %q: %w", id, translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update tenant plan %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user %q: %w", user.Email, translate(err))
	}
	return nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("get user by email: %w", translate(err))
	}
	return &user, nil
}

func (s *GormStore) CreateNote(ctx context.Context, note *model.Note) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("create note: %w", translate(err))
	}
	return nil
}

func (s *GormStore) CountNotes(ctx context.Context, tenantID string) (int64, error) {
	defer prometheus.TrackDBOperation("count")(time.Now())
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Note{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count notes for tenant %q: %w", tenantID, translate(err))
	}
	return count, nil
}

// ListNotes returns the tenant's notes in creation order
func (s *GormStore) ListNotes(ctx context.Context, tenantID string) ([]model.Note, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	notes := make([]model.Note, 0)
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list notes for tenant %q: %w", tenantID, translate(err))
	}
	return notes, nil
}

func (s *GormStore) GetNote(ctx context.Context, id string) (*model.Note, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var note model.Note
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&note).Error; err != nil {
		return nil, fmt.Errorf("get note %q: %w", id, translate(err))
	}
	return &note, nil
}

// UpdateNote writes title and content only; tenant and author never change
func (s *GormStore) UpdateNote(ctx context.Context, note *model.Note) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	result := s.db.WithContext(ctx).Model(note).Updates(map[string]interface{}{
		"title":   note.Title,
		"content": note.Content,
	})
	if result.Error != nil {
		return fmt.Errorf("update note %q: %w", note.ID, translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update note %q: %w", note.ID, ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteNote(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Note{})
	if result.Error != nil {
		return fmt.Errorf("delete note %q: %w", id, translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete note %q: %w", id, ErrNotFound)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
