package db

import "time"

type DocumentModel struct {
	Name          string    `gorm:"primaryKey"`
	Digest        string    `gorm:"index;not null"`
	Owner         string    `gorm:"index;not null"`
	SignatureJSON []byte    `gorm:"type:jsonb"`
	RegisteredAt  time.Time `gorm:"not null"`
}

func (DocumentModel) TableName() string { return "documents" }

type UserModel struct {
	Username       string    `gorm:"primaryKey"`
	CredentialHash string    `gorm:"not null"`
	Role           string    `gorm:"not null"`
	Active         bool      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	LastLogin      *time.Time
}

func (UserModel) TableName() string { return "users" }

type AuditEventModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Document  string    `gorm:"index"`
	Action    string    `gorm:"not null"`
	Outcome   string    `gorm:"not null"`
	Actor     string
	CreatedAt time.Time `gorm:"index;not null"`
}

func (AuditEventModel) TableName() string { return "audit_events" }
