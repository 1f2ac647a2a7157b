package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
)

// Actor identifies who performed a lifecycle transition. Every transition is
// audited no matter the role; admin actions are not exempt.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  enums.Role
}

// Writer records audit entries inside the caller's transaction so the entry
// commits or rolls back together with the transition it describes.
type Writer struct {
	repo Repository
}

// NewWriter builds a Writer on top of the audit log repository.
func NewWriter(repo Repository) (*Writer, error) {
	if repo == nil {
		return nil, fmt.Errorf("auditlog writer requires repository")
	}
	return &Writer{repo: repo}, nil
}

// Record inserts one audit entry for the given transition.
func (w *Writer) Record(ctx context.Context, tx *gorm.DB, contributionID uuid.UUID, actor Actor, action enums.AuditAction, metadata map[string]any) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for audit entry")
	}
	if contributionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contribution id required")
	}
	if actor.ID == uuid.Nil || actor.Email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor identity required")
	}
	if !action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action")
	}

	raw := json.RawMessage(`{}`)
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode audit metadata")
		}
		raw = encoded
	}

	entry := &models.ContributionAuditLog{
		ID:             uuid.New(),
		ContributionID: contributionID,
		ActorRole:      actor.Role,
		ActorID:        actor.ID,
		ActorEmail:     actor.Email,
		Action:         action,
		Metadata:       raw,
	}
	if err := w.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert audit entry")
	}
	return nil
}
