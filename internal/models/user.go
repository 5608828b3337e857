package models

type User struct {
	ID             int     `json:"id"`
	Email          string  `json:"email"`
	HashedPassword string  `json:"-"`
	IsActive       bool    `json:"is_active"`
	IsAdmin        bool    `json:"is_admin"`
	IsVerified     bool    `json:"is_verified"`
	University     *string `json:"university_name"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// BlockedUser is a directed block: user_id is the blocked party,
// blocked_by the one who blocked them. At most one row per pair.
type BlockedUser struct {
	ID        int `json:"id"`
	UserID    int `json:"user_id"`
	BlockedBy int `json:"blocked_by"`
}
