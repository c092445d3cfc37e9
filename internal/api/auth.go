package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userKey = "userID"

// sessionCookie is where the identity provider's frontend SDK stores the
// session token when no Authorization header is sent.
const sessionCookie = "__session"

// requireSession authenticates the request and stashes the caller id in the
// gin context. The identity provider's own login flow stays external; only
// token verification happens here.
func (a *API) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}

		userID, err := a.parseSession(token)
		if err != nil {
			a.logger.Debugf("Rejected session token: %s.", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}

		c.Set(userKey, userID)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie
}

func (a *API) parseSession(token string) (string, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.sessionKey, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}

func currentUser(c *gin.Context) string {
	id, _ := c.Get(userKey)
	s, _ := id.(string)
	return s
}
