package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/votetrack/votetrack/internal/models"
	"github.com/votetrack/votetrack/internal/repository"
	"github.com/votetrack/votetrack/internal/service"
)

// UserKey is the gin context key the authenticated user is stored under.
const UserKey = "currentUser"

// Authenticate verifies the bearer token and loads the user behind it, so
// downstream handlers see fresh roles on every request.
func Authenticate(auth *service.AuthService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Unauthorized"})
			return
		}

		userID, err := auth.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Invalid token"})
			return
		}

		user, err := users.ByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "User not found"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user placed on the context by Authenticate.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// RequireRole rejects the request unless the user holds at least one of the
// given roles. Membership is exact: "administrator" never satisfies "admin".
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Unauthorized"})
			return
		}
		for _, role := range roles {
			if user.HasRole(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  false,
			"message": "Access denied. You do not have permission to perform this action.",
		})
	}
}

// RateLimit applies a per-client-IP token bucket. Used on the auth routes to
// slow down credential stuffing.
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters[ip]; ok {
			return l
		}
		l := rate.NewLimiter(r, burst)
		limiters[ip] = l
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": false, "message": "Too many requests"})
			return
		}
		c.Next()
	}
}
