package entity

import (
	"time"
)

// Spool is a fabrication sub-unit within a revision. Names are unique within
// their revision.
type Spool struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	RevisionID       string    `json:"revision_id" gorm:"size:32;not null;index;uniqueIndex:idx_spool_rev_name"`
	Name             string    `json:"name" gorm:"size:128;not null;uniqueIndex:idx_spool_rev_name"`
	Sheet            string    `json:"sheet" gorm:"size:32"`
	PipingClass      string    `json:"piping_class" gorm:"size:64"`
	Diameter         string    `json:"diameter" gorm:"size:32"`
	Material         string    `json:"material" gorm:"size:128"`
	FabricationPlace string    `json:"fabrication_place" gorm:"size:64"`
	RequiresPWHT     bool      `json:"requires_pwht" gorm:"not null;default:false"`
	RequiresPainting bool      `json:"requires_painting" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`

	Revision *Revision `json:"revision,omitempty" gorm:"foreignKey:RevisionID"`
}

func (Spool) TableName() string {
	return "spools"
}

// Joint is a weld or bolted connection within a revision, optionally tied to
// a spool. Tags are unique within their revision.
type Joint struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	RevisionID string    `json:"revision_id" gorm:"size:32;not null;index;uniqueIndex:idx_joint_rev_tag"`
	SpoolID    string    `json:"spool_id" gorm:"size:32;index"`
	Tag        string    `json:"tag" gorm:"size:128;not null;uniqueIndex:idx_joint_rev_tag"`
	Category   string    `json:"category" gorm:"size:8;not null"`
	Type       string    `json:"type" gorm:"size:32"`
	Diameter   string    `json:"diameter" gorm:"size:32"`
	Schedule   string    `json:"schedule" gorm:"size:32"`
	Thickness  string    `json:"thickness" gorm:"size:32"`
	Material   string    `json:"material" gorm:"size:128"`
	Rating     string    `json:"rating" gorm:"size:32"`
	BoltSize   string    `json:"bolt_size" gorm:"size:32"`
	Scope      string    `json:"scope" gorm:"size:8"`
	Sheet      string    `json:"sheet" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`

	Revision *Revision `json:"revision,omitempty" gorm:"foreignKey:RevisionID"`
	Spool    *Spool    `json:"spool,omitempty" gorm:"foreignKey:SpoolID"`
}

func (Joint) TableName() string {
	return "joints"
}

// MaterialItem is one bill-of-materials line within a revision.
type MaterialItem struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	RevisionID  string    `json:"revision_id" gorm:"size:32;not null;index"`
	SpoolID     string    `json:"spool_id" gorm:"size:32;index"`
	ItemCode    string    `json:"item_code" gorm:"size:64"`
	Description string    `json:"description" gorm:"size:512"`
	Quantity    float64   `json:"quantity" gorm:"not null;default:0"`
	Unit        string    `json:"unit" gorm:"size:16"`
	PipingClass string    `json:"piping_class" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at"`

	Revision *Revision `json:"revision,omitempty" gorm:"foreignKey:RevisionID"`
	Spool    *Spool    `json:"spool,omitempty" gorm:"foreignKey:SpoolID"`
}

func (MaterialItem) TableName() string {
	return "material_items"
}

// Joint category constants
const (
	JointCategoryWeld = "WELD"
	JointCategoryBolt = "BOLT"
)

// Joint execution scope constants
const (
	JointScopeShop  = "SHOP"
	JointScopeField = "FIELD"
)
