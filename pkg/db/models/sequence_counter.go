package models

import "time"

// SequenceCounter holds the last issued request ordinal for one calendar
// year. Rows are only ever mutated through the sequence allocator's atomic
// upsert and are never deleted.
type SequenceCounter struct {
	Year       int       `gorm:"column:year;primaryKey"`
	LastIssued int64     `gorm:"column:last_issued;not null;default:0"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}
