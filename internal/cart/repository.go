package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simkidd/dwec-winery-storefront/pkg/db/models"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
)

// SnapshotRepository persists cart state as JSON documents keyed by viewer.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository binds the repository to the provided DB handle.
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load returns the persisted state for the viewer, or nil when none exists.
func (r *SnapshotRepository) Load(ctx context.Context, viewerID string) (*State, error) {
	id, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid viewer id")
	}

	var record models.CartSnapshot
	err = r.db.WithContext(ctx).Where("viewer_id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}

	var state State
	if err := json.Unmarshal(record.Payload, &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart snapshot")
	}
	return &state, nil
}

// Save upserts the viewer's snapshot.
func (r *SnapshotRepository) Save(ctx context.Context, viewerID string, state State) error {
	id, err := uuid.Parse(viewerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid viewer id")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart snapshot")
	}

	record := models.CartSnapshot{
		ViewerID:  id,
		Payload:   payload,
		UpdatedAt: time.Now().UTC(),
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart snapshot")
	}
	return nil
}

// Delete removes the viewer's snapshot; absence is not an error.
func (r *SnapshotRepository) Delete(ctx context.Context, viewerID string) error {
	id, err := uuid.Parse(viewerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid viewer id")
	}
	err = r.db.WithContext(ctx).Where("viewer_id = ?", id).Delete(&models.CartSnapshot{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart snapshot")
	}
	return nil
}
