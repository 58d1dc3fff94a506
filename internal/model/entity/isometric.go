package entity

import (
	"time"
)

// Isometric is an engineering drawing tracked across dated revisions.
// The code is unique within its project; isometrics are never deleted, only
// their revisions change state.
type Isometric struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectID         string    `json:"project_id" gorm:"size:32;not null;index;uniqueIndex:idx_iso_project_code"`
	Code              string    `json:"code" gorm:"size:128;not null;uniqueIndex:idx_iso_project_code"`
	LineNumber        string    `json:"line_number" gorm:"size:128"`
	LineType          string    `json:"line_type" gorm:"size:64"`
	Area              string    `json:"area" gorm:"size:64"`
	SubArea           string    `json:"sub_area" gorm:"size:64"`
	CurrentRevisionID string    `json:"current_revision_id" gorm:"size:32"`
	CreatedBy         string    `json:"created_by" gorm:"size:32"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Project   *Project   `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Revisions []Revision `json:"revisions,omitempty" gorm:"foreignKey:IsometricID"`
}

func (Isometric) TableName() string {
	return "isometrics"
}

// Revision is one dated version of an isometric. Numeric codes are
// construction revisions, letter codes are preliminary ones.
type Revision struct {
	ID                  string     `json:"id" gorm:"primaryKey;size:32"`
	IsometricID         string     `json:"isometric_id" gorm:"size:32;not null;index"`
	Code                string     `json:"code" gorm:"size:16;not null"`
	Status              string     `json:"status" gorm:"size:16;not null;default:VIGENTE"`
	SpoolingStatus      string     `json:"spooling_status" gorm:"size:64;not null;default:PENDIENTE"`
	SpoolingDate        *time.Time `json:"spooling_date"`
	SpoolingSentDate    *time.Time `json:"spooling_sent_date"`
	ClientFileCode      string     `json:"client_file_code" gorm:"size:128"`
	ClientRevisionCode  string     `json:"client_revision_code" gorm:"size:32"`
	TransmittalCode     string     `json:"transmittal_code" gorm:"size:64"`
	TransmittalDate     *time.Time `json:"transmittal_date"`
	TotalJointsCount    int        `json:"total_joints_count" gorm:"not null;default:0"`
	ExecutedJointsCount int        `json:"executed_joints_count" gorm:"not null;default:0"`
	PendingJointsCount  int        `json:"pending_joints_count" gorm:"not null;default:0"`
	CreatedBy           string     `json:"created_by" gorm:"size:32"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Isometric *Isometric     `json:"isometric,omitempty" gorm:"foreignKey:IsometricID"`
	Spools    []Spool        `json:"spools,omitempty" gorm:"foreignKey:RevisionID"`
	Joints    []Joint        `json:"joints,omitempty" gorm:"foreignKey:RevisionID"`
	Materials []MaterialItem `json:"materials,omitempty" gorm:"foreignKey:RevisionID"`
	Files     []RevisionFile `json:"files,omitempty" gorm:"foreignKey:RevisionID"`
}

func (Revision) TableName() string {
	return "revisions"
}

// Revision lifecycle states. At most one revision per isometric is VIGENTE.
const (
	RevisionStatusVigente   = "VIGENTE"
	RevisionStatusObsoleta  = "OBSOLETA"
	RevisionStatusEliminada = "ELIMINADA"
)

// Spooling workflow states (free text in imports; these are the common values)
const (
	SpoolingStatusPendiente = "PENDIENTE"
	SpoolingStatusSpooleado = "SPOOLEADO"
	SpoolingStatusNA        = "N/A"
)
