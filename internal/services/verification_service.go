package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"campus-exchange/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNoVerification = errors.New("no verification request found")
	ErrOTPExpired     = errors.New("otp expired")
	ErrOTPInvalid     = errors.New("invalid otp")
)

type VerificationService struct {
	pool   *pgxpool.Pool
	otpTTL time.Duration
}

func NewVerificationService(pool *pgxpool.Pool, otpTTL time.Duration) *VerificationService {
	return &VerificationService{pool: pool, otpTTL: otpTTL}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Request starts (or restarts) verification for a user and returns the OTP
// to be emailed. An existing request is overwritten with a fresh code.
func (s *VerificationService) Request(ctx context.Context, userID int, universityEmail, studentID string) (string, time.Duration, error) {
	otp, err := generateOTP()
	if err != nil {
		return "", 0, err
	}
	expires := time.Now().UTC().Add(s.otpTTL)

	query := `INSERT INTO verifications (user_id, university_email, student_id, status, otp_code, otp_expires_at)
	          VALUES ($1, $2, $3, 'pending', $4, $5)
	          ON CONFLICT (user_id) DO UPDATE
	          SET university_email = EXCLUDED.university_email,
	              student_id       = EXCLUDED.student_id,
	              status           = 'pending',
	              otp_code         = EXCLUDED.otp_code,
	              otp_expires_at   = EXCLUDED.otp_expires_at`
	if _, err := s.pool.Exec(ctx, query, userID, universityEmail, studentID, otp, expires); err != nil {
		return "", 0, err
	}
	return otp, s.otpTTL, nil
}

// VerifyOTP checks the submitted code and clears it on success.
func (s *VerificationService) VerifyOTP(ctx context.Context, userID int, code string) error {
	var otp *string
	var expires *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT otp_code, otp_expires_at FROM verifications WHERE user_id = $1`, userID).
		Scan(&otp, &expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoVerification
	}
	if err != nil {
		return err
	}
	if otp == nil {
		return ErrNoVerification
	}
	if expires == nil || time.Now().UTC().After(*expires) {
		return ErrOTPExpired
	}
	if code != *otp {
		return ErrOTPInvalid
	}

	_, err = s.pool.Exec(ctx, `UPDATE verifications SET otp_code = NULL WHERE user_id = $1`, userID)
	return err
}

// AttachDocument records the uploaded ID document for admin review.
func (s *VerificationService) AttachDocument(ctx context.Context, userID int, url string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE verifications SET id_document_url = $1 WHERE user_id = $2`, url, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoVerification
	}
	return nil
}

func (s *VerificationService) Status(ctx context.Context, userID int) (*models.Verification, error) {
	var v models.Verification
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, university_email, student_id, status, id_document_url, created_at
		 FROM verifications WHERE user_id = $1`, userID).
		Scan(&v.ID, &v.UserID, &v.UniversityEmail, &v.StudentID, &v.Status, &v.IDDocumentURL, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VerificationService) Pending(ctx context.Context) ([]models.Verification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, university_email, student_id, status, id_document_url, created_at
		 FROM verifications WHERE status = 'pending' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Verification
	for rows.Next() {
		var v models.Verification
		if err := rows.Scan(&v.ID, &v.UserID, &v.UniversityEmail, &v.StudentID,
			&v.Status, &v.IDDocumentURL, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Review records the admin decision on a pending verification.
func (s *VerificationService) Review(ctx context.Context, userID int, approve bool) error {
	status := models.VerificationRejected
	if approve {
		status = models.VerificationApproved
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE verifications SET status = $1 WHERE user_id = $2`, status, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoVerification
	}
	return nil
}
