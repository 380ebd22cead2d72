// Package domain contains the quote submission models: the lead captured at
// the end of the wizard, frozen together with the snapshot it was quoted on.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrMissingContact = errors.New("missing_contact")
	ErrInvalidEmail   = errors.New("invalid_email")
)

// Request is the contact form posted at the end of the wizard.
type Request struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Lead is the persisted submission. The snapshot is copied in full so the
// quote the customer saw survives later catalog or tariff changes.
type Lead struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	SessionID string       `gorm:"type:text;not null;index"`
	BrandSlug string       `gorm:"type:text;not null;index"`

	FirstName string `gorm:"type:text;not null"`
	LastName  string `gorm:"type:text"`
	Email     string `gorm:"type:text;not null"`
	Phone     string `gorm:"type:text"`
	Address   string `gorm:"type:text"`
	Eircode   string `gorm:"type:text"`

	Snapshot datatypes.JSON `gorm:"not null"`
	Answers  datatypes.JSON

	ProposalSentAt *time.Time
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Lead) TableName() string { return "leads" }

// Service accepts quote submissions.
type Service interface {
	Submit(ctx context.Context, sessionID string, req Request) (*Lead, error)
}
