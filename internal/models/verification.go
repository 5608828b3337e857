package models

import "time"

const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Verification tracks a user's university-email verification: OTP first,
// then an uploaded ID document reviewed by an admin.
type Verification struct {
	ID              int        `json:"id"`
	UserID          int        `json:"user_id"`
	UniversityEmail string     `json:"university_email"`
	StudentID       string     `json:"student_id"`
	Status          string     `json:"status"`
	OTPCode         *string    `json:"-"`
	OTPExpiresAt    *time.Time `json:"-"`
	IDDocumentURL   *string    `json:"id_document_url"`
	CreatedAt       time.Time  `json:"created_at"`
}

type VerificationRequest struct {
	UniversityEmail string `json:"university_email"`
	StudentID       string `json:"student_id"`
}

type OTPVerify struct {
	OTPCode string `json:"otp_code"`
}
