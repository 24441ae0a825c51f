package transfer

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the login cookie. The user id travels as a
// string claim; ParseUserID returns it as the repositories expect it.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) ParseUserID() (int64, error) {
	return strconv.ParseInt(c.UserID, 10, 64)
}

type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}
