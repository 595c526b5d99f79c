package models

import (
	"time"

	"github.com/google/uuid"
)

// Viewer records a generated per-browser identifier used to attribute
// anonymous traffic.
type Viewer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstSeen time.Time `gorm:"not null"`
	LastSeen  time.Time `gorm:"not null"`
}

// TableName keeps the legacy table name.
func (Viewer) TableName() string { return "viewers" }

// SessionProfile is the durably stored copy of an authenticated user's
// profile, refreshed on every successful who-am-i fetch.
type SessionProfile struct {
	UserID    string    `gorm:"primaryKey"`
	Email     string    `gorm:"not null"`
	FirstName string
	LastName  string
	Phone     string
	UpdatedAt time.Time `gorm:"not null"`
}

func (SessionProfile) TableName() string { return "session_profiles" }

// CartSnapshot persists a viewer's cart lines as a JSON document. The pure
// cart store owns the in-memory state; this table is the durable collaborator.
type CartSnapshot struct {
	ViewerID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Payload   []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (CartSnapshot) TableName() string { return "cart_snapshots" }
