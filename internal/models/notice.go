package models

import "time"

// Notice variants.
const (
	NoticeDefault     = "default"
	NoticeDestructive = "destructive"
	NoticeWarning     = "warning"
)

// Notice is a transient user-facing message (a toast).
type Notice struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuditEntry is a durable record of an emergency-access grant.
type AuditEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Role      Role      `json:"role"`
	Path      string    `json:"path"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
