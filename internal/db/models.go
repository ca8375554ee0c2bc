package db

import (
	"encoding/json"
	"time"
)

// SourceRecord maps brief.sources, the editorially maintained source table.
type SourceRecord struct {
	Domain           string          `gorm:"column:domain;type:text;primaryKey"`
	ReliabilityScore int             `gorm:"column:reliability_score;type:integer;not null;default:65"`
	Region           string          `gorm:"column:region;type:text;not null;default:Global"`
	Tags             json.RawMessage `gorm:"column:tags;type:jsonb"`
	BiasLabel        *string         `gorm:"column:bias_label;type:text"`
	CreatedAt        time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (SourceRecord) TableName() string { return "brief.sources" }

// BriefDay maps brief.brief_days, one archived payload per calendar day.
type BriefDay struct {
	Day          string          `gorm:"column:day;type:date;primaryKey"`
	GeneratedAt  time.Time       `gorm:"column:generated_at;type:timestamptz;not null"`
	ClusterCount int             `gorm:"column:cluster_count;type:integer;not null;default:0"`
	Payload      json.RawMessage `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (BriefDay) TableName() string { return "brief.brief_days" }

// ReadState maps brief.read_states, the per-day sets of clusters the reader
// has marked read or bookmarked.
type ReadState struct {
	Day                  string          `gorm:"column:day;type:date;primaryKey"`
	ReadClusterIDs       json.RawMessage `gorm:"column:read_cluster_ids;type:jsonb;not null;default:'[]'"`
	BookmarkedClusterIDs json.RawMessage `gorm:"column:bookmarked_cluster_ids;type:jsonb;not null;default:'[]'"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (ReadState) TableName() string { return "brief.read_states" }

func autoMigrateModels() []any {
	return []any{
		&SourceRecord{},
		&BriefDay{},
		&ReadState{},
	}
}
