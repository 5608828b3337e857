package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"campus-exchange/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticate resolves the Authorization header of an upgrade request to a
// user id. The token must be an HS256 JWT signed with secret, carry a
// numeric sub claim and be unexpired, and the user must still exist.
func Authenticate(ctx context.Context, users UserStore, authHeader string, secret []byte) (int, error) {
	const prefix = "bearer "
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return 0, fmt.Errorf("%w: missing or invalid authorization header", ErrAuthRejected)
	}
	tokenString := strings.TrimSpace(authHeader[len(prefix):])

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: token decode error", ErrAuthRejected)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("%w: invalid token claims", ErrAuthRejected)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("%w: no subject", ErrAuthRejected)
	}
	userID, err := strconv.Atoi(sub)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed subject", ErrAuthRejected)
	}

	if _, err := users.FindUser(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, fmt.Errorf("%w: user not found", ErrAuthRejected)
		}
		return 0, err
	}
	return userID, nil
}
