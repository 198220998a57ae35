package middlewares

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"verifix/models"
	"verifix/services"
	"verifix/utils"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "session"

// CurrentSession returns the session attached by the auth middlewares
func CurrentSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return models.Session{}, false
	}
	sess, ok := v.(models.Session)
	return sess, ok
}

// CurrentUser is the principal of the current session, or nil for anonymous callers
func CurrentUser(c *gin.Context) *models.Principal {
	sess, ok := CurrentSession(c)
	if !ok {
		return nil
	}
	return &sess.User
}

var errMissingToken = errors.New("missing authorization token")
var errTokenFormat = errors.New("invalid authorization token format")

// bearerToken reads the token from the Authorization header, falling back to ?token= for sockets
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", errMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errTokenFormat
	}
	return parts[1], nil
}

func resolveSession(c *gin.Context, jm *utils.JWTManager, store services.SessionStore) (models.Session, error) {
	token, err := bearerToken(c)
	if err != nil {
		return models.Session{}, err
	}
	claims, err := jm.Parse(token)
	if err != nil {
		return models.Session{}, err
	}
	return store.Get(c.Request.Context(), claims.SessionID)
}

// AuthMiddleware requires a valid bearer token whose session is still alive
func AuthMiddleware(jm *utils.JWTManager, store services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := resolveSession(c, jm, store)
		switch {
		case err == nil:
		case errors.Is(err, errMissingToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization token"})
			return
		case errors.Is(err, errTokenFormat):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid Authorization token format"})
			return
		case errors.Is(err, utils.ErrInvalidToken), errors.Is(err, utils.ErrTokenExpired), errors.Is(err, services.ErrSessionNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		default:
			log.Printf("AuthMiddleware: session lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the session when a valid token is sent and
// otherwise lets the request through as anonymous
func OptionalAuthMiddleware(jm *utils.JWTManager, store services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := resolveSession(c, jm, store)
		if err == nil {
			c.Set(sessionContextKey, sess)
		} else if !errors.Is(err, errMissingToken) {
			log.Printf("OptionalAuthMiddleware: continuing anonymously: %v", err)
		}
		c.Next()
	}
}
