package auth

import (
	"time"

	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// CapabilityManageCatalog is required on every catalog-management route.
const CapabilityManageCatalog = "manage_catalog"

type JWTCustomClaims struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Capability string `json:"capability"`
	jwt.RegisteredClaims
}

func NewClaims(userID, email, capability string, tokenExp int) *JWTCustomClaims {
	return &JWTCustomClaims{
		UserID:     userID,
		Email:      email,
		Capability: capability,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Second * time.Duration(tokenExp))),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func GenerateJWT(claims *JWTCustomClaims, jwtSecret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", err
	}
	return t, nil
}

func GetClaims(c echo.Context) (*JWTCustomClaims, *rest.ApiErr) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, rest.NewUnauthorizedRequestError("invalid token")
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok {
		return nil, rest.NewUnauthorizedRequestError("invalid claims")
	}
	return claims, nil
}

func GetUserID(c echo.Context) (string, *rest.ApiErr) {
	claims, apiErr := GetClaims(c)
	if apiErr != nil {
		return "", apiErr
	}
	return claims.UserID, nil
}
