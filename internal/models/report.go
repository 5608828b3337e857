package models

import "time"

const (
	ReportOpen      = "open"
	ReportReviewed  = "reviewed"
	ReportDismissed = "dismissed"
)

type Report struct {
	ID                int        `json:"id"`
	ReporterID        int        `json:"reporter_id"`
	ReportedListingID *int       `json:"reported_listing_id"`
	ReportedUserID    *int       `json:"reported_user_id"`
	Reason            string     `json:"reason"`
	Status            string     `json:"status"`
	AuditLog          *string    `json:"audit_log"`
	CreatedAt         time.Time  `json:"created_at"`
	ReviewedAt        *time.Time `json:"reviewed_at"`
}

type ReportCreate struct {
	ReportedListingID *int   `json:"reported_listing_id"`
	ReportedUserID    *int   `json:"reported_user_id"`
	Reason            string `json:"reason"`
}
