package service

import (
	"context"
	"sync"

	"github.com/Pankajse/YardStick/internal/model"
	"github.com/Pankajse/YardStick/internal/store"
	"github.com/google/uuid"
)

// memoryStore is a map-backed stand-in for store.GormStore
type memoryStore struct {
	mu      sync.Mutex
	tenants map[string]*model.Tenant
	users   map[string]*model.User
	notes   map[string]*model.Note
	order   []string

	failWith error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		tenants: map[string]*model.Tenant{},
		users:   map[string]*model.User{},
		notes:   map[string]*model.Note{},
	}
}

func (m *memoryStore) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, t := range m.tenants {
		if t.Slug == tenant.Slug {
			return store.ErrDuplicate
		}
	}
	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	copied := *tenant
	m.tenants[tenant.ID] = &copied
	return nil
}

func (m *memoryStore) GetTenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	t, ok := m.tenants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memoryStore) GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, t := range m.tenants {
		if t.Slug == slug {
			copied := *t
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryStore) UpdateTenantPlan(ctx context.Context, id string, plan model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Plan = plan
	return nil
}

func (m *memoryStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryStore) CreateNote(ctx context.Context, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	copied := *note
	m.notes[note.ID] = &copied
	m.order = append(m.order, note.ID)
	return nil
}

func (m *memoryStore) CountNotes(ctx context.Context, tenantID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	var count int64
	for _, n := range m.notes {
		if n.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) ListNotes(ctx context.Context, tenantID string) ([]model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var notes []model.Note
	for _, id := range m.order {
		if n, ok := m.notes[id]; ok && n.TenantID == tenantID {
			notes = append(notes, *n)
		}
	}
	return notes, nil
}

func (m *memoryStore) GetNote(ctx context.Context, id string) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	n, ok := m.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (m *memoryStore) UpdateNote(ctx context.Context, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[note.ID]
	if !ok {
		return store.ErrNotFound
	}
	n.Title = note.Title
	n.Content = note.Content
	return nil
}

func (m *memoryStore) DeleteNote(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}
