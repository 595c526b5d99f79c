package viewer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simkidd/dwec-winery-storefront/pkg/db/models"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

// Registrar issues and records per-browser viewer identifiers. The identifier
// keys anonymous state (cart snapshots) before a user ever logs in.
type Registrar struct {
	db   *gorm.DB
	logg *logger.Logger
	now  func() time.Time
}

// NewRegistrar builds the registrar. db may be nil, in which case identifiers
// are issued but not recorded.
func NewRegistrar(db *gorm.DB, logg *logger.Logger) *Registrar {
	return &Registrar{db: db, logg: logg, now: time.Now}
}

// Ensure validates the presented viewer id, minting a fresh one when the
// value is absent or malformed. Recording is best-effort; identifier issuance
// never fails a request.
func (r *Registrar) Ensure(ctx context.Context, presented string) string {
	id, err := uuid.Parse(presented)
	if err != nil {
		id = uuid.New()
	}
	r.record(ctx, id)
	return id.String()
}

func (r *Registrar) record(ctx context.Context, id uuid.UUID) {
	if r.db == nil {
		return
	}
	now := r.now().UTC()
	record := models.Viewer{ID: id, FirstSeen: now, LastSeen: now}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_seen"}),
		}).
		Create(&record).Error
	if err != nil && r.logg != nil {
		r.logg.Warn(ctx, "viewer.record failed")
	}
}
