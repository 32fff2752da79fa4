package identity

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/canteenhub/canteen-backend/pkg/config"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
)

var sessionSigningMethod = jwt.SigningMethodHS256

// SessionClaims is the verified session token minted by the identity
// provider. The subject carries the provider-side user ID.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// VerifySessionToken validates the signature and expiry of a provider
// session token and returns the identity ID it belongs to.
func VerifySessionToken(cfg config.IdentityConfig, tokenString string) (string, error) {
	if cfg.SessionSecret == "" {
		return "", fmt.Errorf("identity session secret is required")
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session token is required")
	}

	claims := &SessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{sessionSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != sessionSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.SessionSecret), nil
		},
	)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token")
	}

	identityID := strings.TrimSpace(claims.Subject)
	if identityID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session token has no subject")
	}
	return identityID, nil
}
