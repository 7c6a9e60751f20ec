package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core/tenant"
	"github.com/trezcool/edvise/core/user"
)

const (
	contextTokenKey  = "userToken"
	contextUserKey   = "user"
	contextTenantKey = "tenant"

	// clockSkew tolerated between the auth provider and us.
	clockSkew = 30 * time.Second
)

// Claims represents the authorization claims of the auth provider's JWT template.
type Claims struct {
	jwt.StandardClaims
	Name   string   `json:"name,omitempty"`
	Email  string   `json:"email,omitempty"`
	Phone  string   `json:"phone,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Tenant string   `json:"tenant,omitempty"` // slug
}

// Valid checks the time based claims, allowing for clockSkew.
func (c Claims) Valid() error {
	now := jwt.TimeFunc().Unix()
	skew := int64(clockSkew / time.Second)
	if c.Subject == "" {
		return errors.New("token has no subject")
	}
	if !c.VerifyExpiresAt(now-skew, true) {
		return errors.New("token is expired")
	}
	if !c.VerifyIssuedAt(now+skew, false) {
		return errors.New("token used before issued")
	}
	if !c.VerifyNotBefore(now+skew, false) {
		return errors.New("token is not valid yet")
	}
	return nil
}

func (c Claims) identity() user.Identity {
	return user.Identity{
		Subject: c.Subject,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Roles:   c.Roles,
	}
}

func newJWTConfig(signingKey string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(signingKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GenerateToken signs claims the way the auth provider does. Used by tests and local tooling.
func GenerateToken(signingKey string, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(signingKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

func getContextTenant(ctx echo.Context) tenant.Tenant {
	tnt, _ := ctx.Get(contextTenantKey).(tenant.Tenant)
	return tnt
}
