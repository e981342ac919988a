package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims are carried by results API bearer tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type Role string

const (
	// RoleViewer may read standings, leaderboards and exports.
	RoleViewer Role = "viewer"
	// RoleOperator may also trigger report passes.
	RoleOperator Role = "operator"
)

// Allows reports whether a token with role r satisfies required.
func (r Role) Allows(required Role) bool {
	switch required {
	case RoleViewer:
		return r == RoleViewer || r == RoleOperator
	case RoleOperator:
		return r == RoleOperator
	default:
		return false
	}
}
