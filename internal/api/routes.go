package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/votetrack/votetrack/internal/middleware"
	"github.com/votetrack/votetrack/internal/models"
	"github.com/votetrack/votetrack/internal/repository"
	"github.com/votetrack/votetrack/internal/service"
)

// RegisterRoutes wires the full HTTP surface onto the engine.
func RegisterRoutes(r *gin.Engine, h *Handler, auth *service.AuthService, users repository.UserRepository) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "voteTrack!")
	})

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimit(rate.Limit(5), 10))
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/confirm-email/:token", h.ConfirmEmail)
		authGroup.POST("/send-confirmation", h.SendConfirmation)
	}

	poll := r.Group("/poll")
	poll.Use(middleware.Authenticate(auth, users))
	{
		poll.POST("/create-poll", middleware.RequireRole(models.RoleAdmin), h.CreatePoll)
		poll.GET("/polls", middleware.RequireRole(models.RoleSuperAdmin), h.ListAllPolls)
		poll.GET("/admin-polls", middleware.RequireRole(models.RoleAdmin), h.ListAdminPolls)
		poll.PATCH("/update/:pollId", middleware.RequireRole(models.RoleAdmin), h.UpdatePoll)
		poll.POST("/vote/:pollId", h.Vote)
		poll.POST("/add-voters", middleware.RequireRole(models.RoleAdmin), h.AddVoters)
		poll.POST("/delete-poll/:pollId", h.DeletePoll)
		poll.GET("/poll-results/:pollId", middleware.RequireRole(models.RoleAdmin), h.PollResults)
	}
}
