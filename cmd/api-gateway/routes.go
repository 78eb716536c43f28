package main

import (
	"github.com/gin-gonic/gin"

	"github.com/clotsync/clotsync-api/internal/handler"
	"github.com/clotsync/clotsync-api/internal/middleware"
	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/service"
)

func registerRoutes(
	api *gin.RouterGroup,
	authSvc *service.AuthService,
	auth *handler.AuthHandler,
	donors *handler.DonorHandler,
	hospitals *handler.HospitalHandler,
	requests *handler.RequestHandler,
	patients *handler.PatientHandler,
) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/hospital/login", auth.HospitalLogin)
		authGroup.POST("/donor/login", auth.DonorLogin)
		authGroup.GET("/me", middleware.JWT(authSvc), auth.Me)
	}

	donorGroup := api.Group("/donors")
	{
		donorGroup.POST("", donors.Register)
		donorGroup.GET("/leaderboard", donors.Leaderboard)
		donorGroup.GET("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleHospital), donors.List)
		donorGroup.GET("/export", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleHospital), donors.Export)

		scoped := donorGroup.Group("/:id", middleware.JWT(authSvc))
		{
			scoped.GET("", middleware.RBAC("SELF", string(models.RoleHospital)), donors.Profile)
			scoped.GET("/eligibility", middleware.RBAC("SELF", string(models.RoleHospital)), donors.Eligibility)
			scoped.POST("/donations", middleware.RBAC("SELF", string(models.RoleHospital)), donors.RecordDonation)
			scoped.PATCH("/availability", middleware.RBAC("SELF"), donors.ToggleAvailability)
			scoped.GET("/history", middleware.RBAC("SELF", string(models.RoleHospital)), donors.History)
			scoped.GET("/alerts", middleware.RBAC("SELF"), donors.Alerts)
			scoped.PATCH("/alerts/:alertId/read", middleware.RBAC("SELF"), donors.MarkAlertRead)
			scoped.POST("/accept", middleware.RBAC("SELF"), donors.Accept)
			scoped.GET("/requests", middleware.RBAC("SELF"), donors.MatchingRequests)
			scoped.GET("/position", middleware.RBAC("SELF", string(models.RoleHospital)), donors.Position)
			scoped.GET("/certificate", middleware.RBAC("SELF"), donors.Certificate)
		}
	}

	hospitalGroup := api.Group("/hospitals")
	{
		hospitalGroup.POST("", hospitals.Register)
		hospitalGroup.GET("", hospitals.List)

		scoped := hospitalGroup.Group("/:id")
		{
			scoped.GET("", hospitals.Get)
			scoped.GET("/inventory", hospitals.Inventory)

			protected := scoped.Group("", middleware.JWT(authSvc), middleware.RBAC("SELF"))
			{
				protected.PATCH("/inventory", hospitals.AdjustInventory)
				protected.GET("/acceptances", hospitals.PendingAcceptances)
				protected.POST("/confirm", hospitals.ConfirmDonation)
				protected.POST("/fulfill", hospitals.FulfillFromStock)
				protected.POST("/transfers", hospitals.Transfer)
				protected.GET("/transfers", hospitals.Transfers)
				protected.GET("/alerts", hospitals.Alerts)
				protected.POST("/alerts", hospitals.DirectAlert)
			}
		}
	}

	requestGroup := api.Group("/requests")
	{
		requestGroup.POST("", middleware.OptionalJWT(authSvc), requests.Create)
		requestGroup.GET("", requests.List)
		requestGroup.GET("/track", requests.Track)
		requestGroup.GET("/:id", requests.Get)
		requestGroup.DELETE("/:id", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleHospital), requests.Cancel)
	}

	api.POST("/patients", patients.Register)
	patientGroup := api.Group("/patients", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleHospital))
	{
		patientGroup.GET("/:id", patients.Get)
		patientGroup.GET("/:id/resources", patients.ResourcesForPatient)
	}

	api.GET("/resources", patients.Resources)
}
