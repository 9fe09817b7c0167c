package domain

import "time"

// AuditLog is one recorded action: who did what to which resource in which club.
type AuditLog struct {
	ID        string
	ClubID    string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
