package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// actorClaims are the token claims the backend reads. The subject is the user id.
type actorClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var (
	errNoAuthHeader  = errors.New("authorization header missing")
	errNotBearerAuth = errors.New("authorization header is not a bearer token")
)

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens
// and attaches the caller as the request's Actor.
// Tokens only identify the caller; every authenticated user may act on every project.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}

	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			logger.Warn("Rejected request without a bearer token", slog.String("error", err.Error()))
			msg := "Authorization header format must be Bearer {token}"
			if errors.Is(err, errNoAuthHeader) {
				msg = "Authorization header required"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		claims := &actorClaims{}
		if _, err := parser.ParseWithClaims(tokenString, claims, keyFunc); err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": tokenErrorMessage(err)})
			return
		}
		if claims.Subject == "" {
			logger.Error("User ID (subject) missing from valid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		actor := Actor{UserID: claims.Subject, Name: claims.Name}
		ctx := WithActor(c.Request.Context(), actor)
		ctx = WithLogger(ctx, logger.With(slog.String("user_id", actor.UserID)))
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(actorKey), actor)

		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errNoAuthHeader
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" || strings.Contains(token, " ") {
		return "", errNotBearerAuth
	}
	return token, nil
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "Token not valid yet"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "Invalid token signature"
	}
	return "Invalid token"
}
