package model

import "time"

// SchemaMigration is one applied entry of the versioned migration list
type SchemaMigration struct {
	Version   int       `gorm:"column:version;primaryKey;autoIncrement:false" json:"version"`
	Name      string    `gorm:"column:name;type:varchar(150);not null" json:"name"`
	Checksum  string    `gorm:"column:checksum;type:varchar(64);not null" json:"checksum"`
	AppliedAt time.Time `gorm:"column:applied_at;not null" json:"applied_at"`
}

func (SchemaMigration) TableName() string { return "schema_migrations" }
