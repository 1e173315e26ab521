package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserID  = "user_id"
	ContextIsAdmin = "is_admin"

	devUserHeader = "X-User-ID"
	devRoleHeader = "X-User-Role"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID  string
	Name    string
	IsAdmin bool
}

type TokenParser interface {
	Parse(token string) (*Identity, error)
}

// CasdoorParser verifies tokens issued by a Casdoor application.
type CasdoorParser struct{}

func NewCasdoorParser(cfg config.CasdoorConfig) *CasdoorParser {
	casdoorsdk.InitConfig(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.Organization, cfg.Application)
	return &CasdoorParser{}
}

func (p *CasdoorParser) Parse(token string) (*Identity, error) {
	claims, err := casdoorsdk.ParseJwtToken(token)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	userID := claims.User.Id
	if userID == "" {
		userID = claims.User.Name
	}
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID:  userID,
		Name:    claims.User.Name,
		IsAdmin: claims.User.IsAdmin,
	}, nil
}

// Authenticate attaches the caller identity when a bearer token is sent. Requests without
// an Authorization header continue anonymously; a malformed or invalid token is rejected.
func Authenticate(parser TokenParser, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abort(c, http.StatusUnauthorized, "Invalid authorization header format", "INVALID_AUTH_HEADER")
			return
		}

		identity, err := parser.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Warn("Rejected bearer token", "path", c.Request.URL.Path, "error", err)
			abort(c, http.StatusUnauthorized, "Invalid or expired token", "INVALID_TOKEN")
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// DevHeaderAuth trusts X-User-ID and X-User-Role for local runs without an identity provider.
func DevHeaderAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(devUserHeader)); userID != "" {
			setIdentity(c, &Identity{
				UserID:  userID,
				IsAdmin: strings.EqualFold(c.GetHeader(devRoleHeader), "admin"),
			})
		}
		c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			abort(c, http.StatusUnauthorized, "User not authenticated", "UNAUTHORIZED")
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			abort(c, http.StatusUnauthorized, "User not authenticated", "UNAUTHORIZED")
			return
		}
		if !IsAdmin(c) {
			abort(c, http.StatusForbidden, "Administrator role required", "FORBIDDEN")
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextIsAdmin)
}

func setIdentity(c *gin.Context, identity *Identity) {
	c.Set(ContextUserID, identity.UserID)
	c.Set(ContextIsAdmin, identity.IsAdmin)
}

func abort(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message": message,
		"code":    code,
	})
}
