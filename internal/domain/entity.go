package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseEntity carries the system columns shared by every persisted entity.
type BaseEntity struct {
	ID         uuid.UUID  `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`
	ModifiedAt *time.Time `json:"modifiedAt"`
	CreatedBy  *uuid.UUID `gorm:"size:36" json:"createdBy"`
	ModifiedBy *uuid.UUID `gorm:"size:36" json:"modifiedBy"`
}

// Entity is satisfied by any struct embedding BaseEntity (through its pointer).
type Entity interface {
	Audit() *BaseEntity
}

func (b *BaseEntity) Audit() *BaseEntity { return b }

// BeforeCreate fills the id and creation time when a row is inserted without
// going through the repository.
func (b *BaseEntity) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	return nil
}

// Stamp assigns a fresh identity and creation metadata.
func (b *BaseEntity) Stamp(actorID *uuid.UUID, now time.Time) {
	b.ID = uuid.New()
	b.CreatedAt = now
	b.ModifiedAt = &now
	b.CreatedBy = actorID
	b.ModifiedBy = actorID
}

// Restamp keeps the creation metadata of prev and marks b as modified now.
func (b *BaseEntity) Restamp(prev *BaseEntity, actorID *uuid.UUID, now time.Time) {
	b.ID = prev.ID
	b.CreatedAt = prev.CreatedAt
	b.CreatedBy = prev.CreatedBy
	b.ModifiedAt = &now
	b.ModifiedBy = actorID
}

// Actor is the caller a write is performed on behalf of. The zero value is anonymous.
type Actor struct {
	Login string
}

func (a Actor) Anonymous() bool { return a.Login == "" }
