package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// FieldChange records one watched field whose value differs between two
// revision generations.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// FieldChanges is stored as a jsonb column.
type FieldChanges []FieldChange

func (c FieldChanges) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *FieldChanges) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// RevisionImpact is an append-only record of one structural change between
// two generations of an isometric's content. Rows are never updated.
type RevisionImpact struct {
	ID               string       `json:"id" gorm:"primaryKey;size:32"`
	RevisionID       string       `json:"revision_id" gorm:"size:32;not null;index"`
	EntityType       string       `json:"entity_type" gorm:"size:8;not null"`
	EntityIdentifier string       `json:"entity_identifier" gorm:"size:128;not null"`
	ChangeType       string       `json:"change_type" gorm:"size:8;not null"`
	Changes          FieldChanges `json:"changes" gorm:"type:jsonb"`
	CreatedAt        time.Time    `json:"created_at"`

	Revision *Revision `json:"revision,omitempty" gorm:"foreignKey:RevisionID"`
}

func (RevisionImpact) TableName() string {
	return "revision_impacts"
}

// Impact entity type constants
const (
	ImpactEntitySpool = "SPOOL"
	ImpactEntityJoint = "JOINT"
)

// Impact change type constants
const (
	ImpactChangeNew    = "NEW"
	ImpactChangeDelete = "DELETE"
	ImpactChangeModify = "MODIFY"
)
