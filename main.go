package main

import (
	"log"
	"net/http"
	"tripmate-backend/config"
	"tripmate-backend/database"
	"tripmate-backend/handlers"
	"tripmate-backend/middleware"

	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()
	database.Connect()
	database.ConnectRedis()

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/logout", handlers.Logout)
		auth.POST("/forgot-password", handlers.ForgotPassword)
		auth.POST("/reset-password", handlers.ResetPassword)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		// Current user
		api.GET("/users/me", handlers.GetProfile)
		api.PATCH("/users/me", handlers.UpdateProfile)
		api.PATCH("/users/me/password", handlers.UpdatePassword)
		api.PATCH("/users/me/fcm-token", handlers.UpdateFCMToken)

		// Trips and itinerary
		api.POST("/trips", handlers.CreateTrip)
		api.GET("/trips", handlers.GetTrips)
		api.GET("/trips/:id", handlers.GetTrip)
		api.PATCH("/trips/:id", handlers.UpdateTrip)
		api.DELETE("/trips/:id", handlers.DeleteTrip)
		api.GET("/trips/:id/itinerary", handlers.GetItinerary)
		api.POST("/trips/:id/itinerary", handlers.CreateItineraryItem)
		api.PATCH("/trips/:id/itinerary/reorder", handlers.ReorderItinerary)
		api.PATCH("/trips/:id/itinerary/:itemId", handlers.UpdateItineraryItem)
		api.DELETE("/trips/:id/itinerary/:itemId", handlers.DeleteItineraryItem)

		// Groups and membership
		api.POST("/groups", handlers.CreateGroup)
		api.GET("/groups", handlers.GetGroups)
		api.GET("/groups/:id", handlers.GetGroup)
		api.PATCH("/groups/:id", handlers.UpdateGroup)
		api.DELETE("/groups/:id", handlers.DeleteGroup)
		api.GET("/groups/:id/members", handlers.GetGroupMembers)
		api.PATCH("/groups/:id/members/:memberId", handlers.UpdateMemberRole)
		api.DELETE("/groups/:id/members/:memberId", handlers.RemoveMember)
		api.POST("/groups/:id/invitations", handlers.CreateInvitation)
		api.GET("/groups/:id/invitations", handlers.GetInvitations)
		api.DELETE("/groups/:id/invitations/:invitationId", handlers.RevokeInvitation)
		api.POST("/groups/join/:token", handlers.JoinGroup)

		// Expenses
		api.GET("/groups/:id/expenses", handlers.GetGroupExpenses)
		api.POST("/groups/:id/expenses", handlers.CreateExpense)
		api.GET("/groups/:id/expenses/:expenseId", handlers.GetExpense)
		api.PATCH("/groups/:id/expenses/:expenseId", handlers.UpdateExpense)
		api.DELETE("/groups/:id/expenses/:expenseId", handlers.DeleteExpense)
		api.PATCH("/groups/:id/expenses/:expenseId/settle/:participantId", handlers.SettleParticipant)

		// Settlements and balances
		api.GET("/groups/:id/settlements", handlers.GetGroupSettlements)
		api.POST("/groups/:id/settlements", handlers.CreateSettlement)
		api.GET("/groups/:id/balances", handlers.GetGroupBalances)
	}

	log.Printf("🚀 Server starting on port %s", config.AppConfig.Port)
	if err := r.Run(":" + config.AppConfig.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
