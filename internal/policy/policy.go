// Package policy decides whether an identity may perform an action. Every
// decision is a pure function of its inputs; a nil error means allow.
package policy

import (
	"fmt"

	"github.com/Pankajse/YardStick/internal/apperror"
	"github.com/Pankajse/YardStick/internal/model"
	"github.com/Pankajse/YardStick/pkg/jwtutil"
)

const DefaultFreeNoteLimit = 3

// Engine holds the plan limits decisions are evaluated against
type Engine struct {
	freeNoteLimit int
}

func NewEngine(freeNoteLimit int) *Engine {
	return &Engine{freeNoteLimit: freeNoteLimit}
}

// FreeNoteLimit is the maximum number of notes a FREE tenant may hold
func (e *Engine) FreeNoteLimit() int {
	return e.freeNoteLimit
}

func (e *Engine) CanInviteUser(identity jwtutil.Identity) error {
	if model.Role(identity.Role) != model.RoleAdmin {
		return apperror.Forbidden("Only Admin can invite users")
	}
	return nil
}

// CanUpgradePlan only checks the role. The target slug is not compared with
// the caller's tenant; see IsCrossTenant.
func (e *Engine) CanUpgradePlan(identity jwtutil.Identity, targetSlug string) error {
	if model.Role(identity.Role) != model.RoleAdmin {
		return apperror.Forbidden("Only Admin can upgrade plan")
	}
	return nil
}

// IsCrossTenant reports whether slug names a tenant other than the caller's
func (e *Engine) IsCrossTenant(identity jwtutil.Identity, slug string) bool {
	return identity.TenantSlug != slug
}

func (e *Engine) CanCreateNote(tenant *model.Tenant, currentCount int64) error {
	if tenant.Plan == model.PlanFree && currentCount >= int64(e.freeNoteLimit) {
		return apperror.QuotaExceeded(fmt.Sprintf("Free plan allows max %d notes. Upgrade to Pro.", e.freeNoteLimit))
	}
	return nil
}

// CanAccessNote hides notes of other tenants behind the same error as a
// missing note.
func (e *Engine) CanAccessNote(identity jwtutil.Identity, note *model.Note) error {
	if note == nil || note.TenantID != identity.TenantID {
		return apperror.NotFound("Note not found")
	}
	return nil
}
