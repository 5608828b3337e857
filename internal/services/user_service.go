package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus-exchange/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDomainNotAllowed   = errors.New("email domain not allowed")
)

// domainToUniversity autofills the university from a known email domain.
var domainToUniversity = map[string]string{
	"cuiatk.edu.pk": "COMSATS Attock University",
	"uni.edu":       "University of Education",
}

type UserService struct {
	pool           *pgxpool.Pool
	allowedDomains []string
}

func NewUserService(pool *pgxpool.Pool, allowedDomains []string) *UserService {
	return &UserService{pool: pool, allowedDomains: allowedDomains}
}

func (s *UserService) domainAllowed(domain string) bool {
	for _, d := range s.allowedDomains {
		if d == domain {
			return true
		}
	}
	return false
}

func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return nil, ErrDomainNotAllowed
	}
	domain := email[at+1:]
	if !s.domainAllowed(domain) {
		return nil, ErrDomainNotAllowed
	}

	var existing int
	err := s.pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&existing)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var university *string
	if u, ok := domainToUniversity[domain]; ok {
		university = &u
	}

	user := models.User{Email: email, University: university, IsActive: true}
	query := `INSERT INTO users (email, hashed_password, university)
	          VALUES ($1, $2, $3)
	          RETURNING id, is_active, is_admin, is_verified`
	err = s.pool.QueryRow(ctx, query, email, string(hash), university).
		Scan(&user.ID, &user.IsActive, &user.IsAdmin, &user.IsVerified)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	var hash string
	query := `SELECT id, email, hashed_password, is_active, is_admin, is_verified, university
	          FROM users WHERE email = $1`
	err := s.pool.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Email, &hash, &user.IsActive, &user.IsAdmin, &user.IsVerified, &user.University)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// FindUser looks a user up by id. Satisfies the chat core's UserStore.
func (s *UserService) FindUser(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, is_active, is_admin, is_verified, university
	          FROM users WHERE id = $1`
	err := s.pool.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.IsActive, &user.IsAdmin, &user.IsVerified, &user.University)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IsBlocked reports whether blockedBy has blocked userID. Satisfies the
// chat core's BlockStore.
func (s *UserService) IsBlocked(ctx context.Context, userID, blockedBy int) (bool, error) {
	var blocked bool
	query := `SELECT EXISTS (SELECT 1 FROM blocked_users WHERE user_id = $1 AND blocked_by = $2)`
	if err := s.pool.QueryRow(ctx, query, userID, blockedBy).Scan(&blocked); err != nil {
		return false, err
	}
	return blocked, nil
}

// Block records that blockedBy blocked userID. Blocking twice is a no-op,
// backed by the unique constraint on the pair.
func (s *UserService) Block(ctx context.Context, userID, blockedBy int) error {
	query := `INSERT INTO blocked_users (user_id, blocked_by) VALUES ($1, $2)
	          ON CONFLICT (user_id, blocked_by) DO NOTHING`
	_, err := s.pool.Exec(ctx, query, userID, blockedBy)
	return err
}

func (s *UserService) Unblock(ctx context.Context, userID, blockedBy int) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM blocked_users WHERE user_id = $1 AND blocked_by = $2`, userID, blockedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetVerified flips a user's verified flag after admin review.
func (s *UserService) SetVerified(ctx context.Context, userID int, verified bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET is_verified = $1 WHERE id = $2`, verified, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, limit int) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, is_active, is_admin, is_verified, university
		 FROM users ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.IsActive, &u.IsAdmin, &u.IsVerified, &u.University); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// EnsureAdmin creates the bootstrap admin account if no admin exists yet.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var id int
	err := s.pool.QueryRow(ctx, `SELECT id FROM users WHERE is_admin LIMIT 1`).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	query := `INSERT INTO users (email, hashed_password, is_admin, is_verified)
	          VALUES ($1, $2, TRUE, TRUE)
	          ON CONFLICT (email) DO NOTHING`
	if _, err := s.pool.Exec(ctx, query, strings.ToLower(email), string(hash)); err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}
	log.Info().Str("email", email).Msg("admin account ensured")
	return nil
}
