package controller

import (
	"github.com/gin-gonic/gin"

	"cdr-backend-V1.0/internal/service"
	"cdr-backend-V1.0/utilities"
)

func RegisterRoutes(
	r *gin.Engine,
	authService service.AuthService,
	catalogService service.CatalogService,
	testService service.TestService,
	adminService service.AdminService,
	reportService service.ReportService,
) {
	api := r.Group("/api")

	// Auth routes.
	authCtrl := NewAuthController(authService)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", authCtrl.Signup)
		authRoutes.POST("/signin", authCtrl.Signin)
		authRoutes.POST("/refresh", authCtrl.Refresh)
		authRoutes.GET("/me", utilities.AuthMiddleware(), authCtrl.Me)
	}

	// Test routes.
	testCtrl := NewTestController(testService, catalogService, reportService)
	testRoutes := api.Group("/test")
	testRoutes.Use(utilities.AuthMiddleware())
	{
		testRoutes.GET("/questions", testCtrl.GetQuestions)
		testRoutes.POST("/start", testCtrl.StartTest)
		testRoutes.POST("/save", testCtrl.SaveAnswers)
		testRoutes.POST("/submit", testCtrl.SubmitTest)
		testRoutes.GET("/my-tests", testCtrl.MyTests)
		testRoutes.GET("/results/:id", testCtrl.GetResult)
		testRoutes.GET("/results/:id/analytics", testCtrl.GetResultAnalytics)
		testRoutes.GET("/results/:id/report", testCtrl.DownloadReport)
	}

	// Admin routes.
	adminCtrl := NewAdminController(adminService, testService)
	adminRoutes := api.Group("/admin")
	adminRoutes.Use(utilities.AuthMiddleware(), utilities.AdminOnly())
	{
		adminRoutes.GET("/users", adminCtrl.ListUsers)
		adminRoutes.GET("/users/:userId", adminCtrl.GetUser)
		adminRoutes.GET("/users/:userId/tests", adminCtrl.ListUserTests)
		adminRoutes.GET("/users/:userId/tests/:testId", adminCtrl.GetUserTest)
		adminRoutes.GET("/users/:userId/tests/:testId/analytics", adminCtrl.GetUserTestAnalytics)
	}
}
