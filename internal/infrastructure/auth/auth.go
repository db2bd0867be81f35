package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/domain/user"
	"r2-dashboard/internal/utils/platformerrors"
)

const principalKey = "auth_principal"

var errUnsupportedMethod = errors.New("unsupported signing method")

// Principal is the authenticated caller.
type Principal struct {
	UserID   string
	Email    string
	Role     string
	External bool
}

// Claims are the session token claims.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Validator issues dashboard sessions and validates session or externally issued tokens.
type Validator struct {
	cfg    *config.Config
	log    zerolog.Logger
	secret []byte
	jwks   *keyfunc.JWKS
	now    func() time.Time
}

// NewValidator initializes session signing and, when AUTH_JWKS_URL is set, JWKS fetching.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	v := &Validator{
		cfg:    cfg,
		log:    log.With().Str("component", "auth").Logger(),
		secret: []byte(cfg.SessionSecret),
		now:    time.Now,
	}
	if !cfg.AuthEnabled || cfg.AuthJWKSURL == "" {
		return v, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			v.log.Error().Err(err).Msg("jwks refresh error")
		},
	}
	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, fmt.Errorf("load jwks: %w", err)
	}
	v.jwks = jwks
	return v, nil
}

// Issue signs a session token for u.
func (v *Validator) Issue(u *user.User) (string, time.Time, error) {
	if len(v.secret) == 0 {
		return "", time.Time{}, errors.New("session secret is not configured")
	}
	now := v.now()
	expiresAt := now.Add(v.cfg.SessionTTL)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    v.cfg.AuthIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses tokenString. HS256 tokens must be dashboard sessions; RS tokens are
// accepted only when a JWKS is configured.
func (v *Validator) Validate(tokenString string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc,
		jwt.WithValidMethods([]string{"HS256", "RS256", "RS384", "RS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	external := token.Method.Alg() != jwt.SigningMethodHS256.Alg()
	if external {
		return v.externalPrincipal(claims)
	}
	if claims.Issuer != v.cfg.AuthIssuer {
		return nil, errors.New("unexpected issuer")
	}
	return &Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// externalPrincipal checks the issuer and audience of a JWKS-signed token. Its role
// claim is dropped unless AUTH_JWKS_TRUST_ROLE is set.
func (v *Validator) externalPrincipal(claims *Claims) (*Principal, error) {
	if v.cfg.AuthJWKSIssuer == "" || claims.Issuer != v.cfg.AuthJWKSIssuer {
		return nil, errors.New("unexpected issuer")
	}
	if aud := v.cfg.AuthJWKSAudience; aud != "" && !slices.Contains(claims.Audience, aud) {
		return nil, errors.New("unexpected audience")
	}
	principal := &Principal{
		UserID:   claims.Subject,
		Email:    claims.Email,
		External: true,
	}
	if v.cfg.AuthJWKSTrustRole {
		principal.Role = claims.Role
	}
	return principal, nil
}

func (v *Validator) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.secret) == 0 {
			return nil, errUnsupportedMethod
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.jwks == nil {
			return nil, errUnsupportedMethod
		}
		return v.jwks.Keyfunc(token)
	default:
		return nil, errUnsupportedMethod
	}
}

// Middleware enforces a valid session when auth is enabled.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.cfg.AuthEnabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := v.tokenFromRequest(c)
		if tokenString == "" {
			platformerrors.WriteUnauthorized(c, "missing session token")
			return
		}
		principal, err := v.Validate(tokenString)
		if err != nil {
			v.log.Debug().Err(err).Msg("rejected token")
			platformerrors.WriteUnauthorized(c, "invalid session token")
			return
		}
		SetPrincipal(c, principal)
		c.Next()
	}
}

// Optional attaches the principal when a valid token is present and never rejects.
func (v *Validator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v != nil {
			if tokenString := v.tokenFromRequest(c); tokenString != "" {
				if principal, err := v.Validate(tokenString); err == nil {
					SetPrincipal(c, principal)
				}
			}
		}
		c.Next()
	}
}

// Enabled reports whether routes require a session.
func (v *Validator) Enabled() bool {
	return v != nil && v.cfg.AuthEnabled
}

// SetSessionCookie stores token in an HttpOnly cookie.
func (v *Validator) SetSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(v.cfg.SessionCookie, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

// ClearSessionCookie expires the session cookie.
func (v *Validator) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(v.cfg.SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
}

func (v *Validator) tokenFromRequest(c *gin.Context) string {
	if token := bearerToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if cookie, err := c.Cookie(v.cfg.SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// SetPrincipal records the authenticated caller on c.
func SetPrincipal(c *gin.Context, principal *Principal) {
	c.Set(principalKey, principal)
}

// PrincipalFromContext returns the principal set by Middleware or Optional.
func PrincipalFromContext(c *gin.Context) (*Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*Principal)
	return principal, ok
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
