package middleware

import (
	"strings"
	"time"
	"tripmate-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie holding the signed session token.
const SessionCookie = "tripmate_session"

// AuthRequired resolves the caller's identity from the session cookie or,
// for non-browser clients, a bearer token, and stores the user ID on the
// request context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if tokenString == "" {
			utils.Unauthorized(c, "Unauthorized")
			return
		}

		userID, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Unauthorized(c, "Unauthorized")
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
