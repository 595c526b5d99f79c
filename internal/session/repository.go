package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simkidd/dwec-winery-storefront/pkg/db/models"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

// ProfileStore mirrors resolved user profiles into postgres.
type ProfileStore struct {
	db *gorm.DB
}

// NewProfileStore binds the store to the provided DB handle.
func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Upsert refreshes the durable copy of the profile.
func (s *ProfileStore) Upsert(ctx context.Context, profile types.UserProfile) error {
	if profile.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	record := models.SessionProfile{
		UserID:    profile.ID,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Phone:     profile.Phone,
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "phone", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert session profile")
	}
	return nil
}

// Lookup returns the stored profile, or nil when the user was never seen.
func (s *ProfileStore) Lookup(ctx context.Context, userID string) (*types.UserProfile, error) {
	var record models.SessionProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup session profile")
	}
	return &types.UserProfile{
		ID:        record.UserID,
		Email:     record.Email,
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Phone:     record.Phone,
	}, nil
}
