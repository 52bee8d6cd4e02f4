// model/claims.go
package model

import (
	"github.com/golang-jwt/jwt/v5"
)

type AccessClaims struct {
	UserID int    `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
