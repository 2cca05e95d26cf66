package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/pkg/authz"
	"github.com/fatflowers/quitsmart/pkg/config"
	"github.com/fatflowers/quitsmart/pkg/logctx"
	"github.com/fatflowers/quitsmart/pkg/response"
)

// AccountKey holds the authenticated authz.Account on gin.Context.
const AccountKey = "account"

// Claims is the payload of an access token. The subject is the account id.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

var errMissingToken = errors.New("missing bearer token")

// Authenticator verifies HS256 bearer tokens issued by the identity service.
type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(cfg config.AuthConfig) (*Authenticator, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	return &Authenticator{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer}, nil
}

// Parse validates raw and returns the account it identifies.
func (a *Authenticator) Parse(raw string) (authz.Account, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return a.secret, nil }, opts...)
	if err != nil {
		return authz.Account{}, err
	}
	if claims.Subject == "" {
		return authz.Account{}, errors.New("token has no subject")
	}
	return authz.Account{ID: claims.Subject, Roles: claims.Roles}, nil
}

// Sign issues a token for account. Used by tooling and tests.
func (a *Authenticator) Sign(account authz.Account, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = account.ID
	if claims.Issuer == "" {
		claims.Issuer = a.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Roles: account.Roles, RegisteredClaims: claims}).SignedString(a.secret)
}

func bearer(c *gin.Context) (string, error) {
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}

// AuthMiddleware rejects requests without a valid bearer token. On success
// the account is available through authz.AccountFromCtx and the request
// logger carries account_id.
func AuthMiddleware(a *Authenticator, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c)
		var account authz.Account
		if err == nil {
			account, err = a.Parse(raw)
		}
		if err != nil {
			logctx.FromGin(c, base).Infow("auth_rejected", "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT(response.APIResponseCodeUnauthorized, "invalid or missing access token"))
			return
		}

		c.Set(AccountKey, account)
		c.Request = c.Request.WithContext(authz.WithAccount(c.Request.Context(), account))
		setLogger(c, logctx.FromGin(c, base).With(logctx.AccountIDKey, account.ID))
		c.Next()
	}
}
