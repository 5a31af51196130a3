package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rentora/rentauth"
)

const (
	currentUserKey = "rentauth/current-user"
	accessTokenKey = "rentauth/access-token"
)

// CurrentUser returns the authenticated user injected by [RequireSession].
func CurrentUser(c *gin.Context) (*rentauth.CurrentUser, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*rentauth.CurrentUser)
	return user, ok
}

// AccessToken returns the raw bearer token injected by [RequireSession].
// Handlers that re-authenticate against the engine, such as the national
// ID reveal, need the token itself rather than the resolved user.
func AccessToken(c *gin.Context) (string, bool) {
	value, ok := c.Get(accessTokenKey)
	if !ok {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}

// RequireSession returns middleware that reads the Authorization header,
// resolves the access token through [rentauth.Engine.GetCurrentUser], and
// injects the result into the request context. Requests without a valid
// bearer token are rejected with 401.
func RequireSession(engine *rentauth.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if engine == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": rentauth.Code(rentauth.ErrTokenInvalid)})
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": rentauth.Code(rentauth.ErrTokenInvalid)})
			return
		}

		user, err := engine.GetCurrentUser(c.Request.Context(), token)
		if err != nil {
			code := rentauth.Code(err)
			status := http.StatusUnauthorized
			if code == "INTERNAL" {
				status = http.StatusInternalServerError
			}
			c.AbortWithStatusJSON(status, gin.H{"code": code})
			return
		}

		c.Set(currentUserKey, user)
		c.Set(accessTokenKey, token)
		c.Next()
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
