package entity

import (
	"time"
)

// Project is the tenant scope for every engineering document.
type Project struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	Code        string     `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name        string     `json:"name" gorm:"size:128;not null"`
	CompanyName string     `json:"company_name" gorm:"size:128"`
	Status      string     `json:"status" gorm:"size:16;not null;default:active"`
	CreatedBy   string     `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`
}

func (Project) TableName() string {
	return "projects"
}

// User holds the minimum identity fields the engineering module references.
// Account management itself lives in the auth module.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Email     string    `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Role      string    `json:"role" gorm:"size:32;not null;default:viewer"`
	Status    string    `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Project status constants
const (
	ProjectStatusActive   = "active"
	ProjectStatusPaused   = "paused"
	ProjectStatusFinished = "finished"
)
