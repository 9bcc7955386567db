package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// accessTokenKey is the gin context key the bearer token is stored under.
const accessTokenKey = "accessToken"

// BearerToken extracts the Authorization bearer token into the request
// context. The token is the Google OAuth access token obtained by the
// client; this service never performs the OAuth flow itself. Requests
// without a token proceed — cloud operations reject them individually.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			c.Set(accessTokenKey, token)
		}
		c.Next()
	}
}

// AccessToken returns the bearer token for the request, or an empty
// string when the request carried none.
func AccessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}
