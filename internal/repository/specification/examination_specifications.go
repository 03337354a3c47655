package specification

import (
	"time"

	"medassist-be/internal/entity"

	"gorm.io/gorm"
)

type ByKind struct {
	Kind entity.ExamKind
}

func (s ByKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", string(s.Kind))
}

type ByStatus struct {
	Status entity.ExamStatus
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// StuckInProcessing matches processing records not touched since the cutoff.
// Used by the reconciliation sweep.
type StuckInProcessing struct {
	Cutoff time.Time
}

func (s StuckInProcessing) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND updated_at < ?", string(entity.ExamStatusProcessing), s.Cutoff)
}
