// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	// Init swagger doc
	_ "JobQuest-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"JobQuest-backend/internal/auth"
	"JobQuest-backend/internal/controller/admin"
	"JobQuest-backend/internal/controller/application"
	"JobQuest-backend/internal/controller/company"
	"JobQuest-backend/internal/controller/contact"
	"JobQuest-backend/internal/controller/file"
	"JobQuest-backend/internal/controller/guest"
	"JobQuest-backend/internal/controller/job"
	"JobQuest-backend/internal/controller/newsletter"
	"JobQuest-backend/internal/controller/user"
	"JobQuest-backend/internal/middleware"
	"JobQuest-backend/internal/model"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOriginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrigins := strings.Split(allowOriginsStr, ",")

	googleOauth := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_AUTH_CLIENT"),
		ClientSecret: os.Getenv("GOOGLE_AUTH_SECRET"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint:    google.Endpoint,
		RedirectURL: os.Getenv("OAUTH_REDIRECT_URL"),
	}

	gAuth := auth.NewOauthLoginHandler(s.DB, googleOauth, "https://www.googleapis.com/oauth2/v2/userinfo")
	lAuth := auth.NewLocalAuthHandler(s.DB)

	jobCtrl := job.NewJobController(s.DB)
	appCtrl := application.NewApplicationController(s.DB)
	guestCtrl := guest.NewGuestController(s.DB)
	companyCtrl := company.NewCompanyController(s.DB)
	userCtrl := user.NewUserController(s.DB)
	adminCtrl := admin.NewAdminController(s.DB)
	contactCtrl := contact.NewContactController(s.DB)
	newsletterCtrl := newsletter.NewNewsletterController(s.DB)
	fileCtrl := file.NewFileController(s.DB, s.Storage)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.EnvRateLimitMiddleware())

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("google/user", gAuth.UserGoogleLoginHandler)
			authRoute.POST("google/employer", gAuth.EmployerGoogleLoginHandler)
			authRoute.GET("google/callback", gAuth.Callback)

			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("register", lAuth.LocalRegisterHandler)
		}

		// Public browsing and submission endpoints
		v1.GET("job", jobCtrl.ListJobs)
		v1.GET("job/:id", jobCtrl.GetJobByID)
		v1.GET("company", companyCtrl.List)
		v1.GET("company/:company_id", companyCtrl.GetByID)
		v1.GET("company/:company_id/followers", companyCtrl.FollowerCount)
		v1.POST("guest-application", guestCtrl.ApplyHandler)
		v1.GET("guest-application", guestCtrl.GetByEmail)
		v1.POST("contact", contactCtrl.Submit)
		v1.POST("newsletter/subscribe", newsletterCtrl.Subscribe)
		v1.POST("newsletter/unsubscribe", newsletterCtrl.Unsubscribe)

		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB))

			userRoute := needAuth.Group("/user")
			{
				userRoute.GET("me", userCtrl.GetMyProfile)
				userRoute.PATCH("me", userCtrl.EditProfile)
				userRoute.GET("dashboard", userCtrl.GetDashboard)
				userRoute.GET("saved-jobs", userCtrl.GetSavedJobs)
				userRoute.POST("saved-jobs/:job_id", userCtrl.SaveJob)
				userRoute.DELETE("saved-jobs/:job_id", userCtrl.UnsaveJob)
			}

			needAuth.POST("application", appCtrl.ApplyHandler)
			needAuth.GET("application/me", appCtrl.MyApplications)
			needAuth.GET("job/:id/applications", appCtrl.ListForJob)
			needAuth.PATCH("application/:id/status", appCtrl.UpdateStatus)

			needAuth.POST("company/:company_id/follow", companyCtrl.Follow)
			needAuth.DELETE("company/:company_id/follow", companyCtrl.Unfollow)

			fileRoute := needAuth.Group("/file")
			{
				fileRoute.GET(":id", fileCtrl.GetFile)
				fileRoute.POST("resume", middleware.SizeLimit(10<<20), fileCtrl.UploadResume)
				fileRoute.POST("avatar", middleware.SizeLimit(10<<20), fileCtrl.UploadAvatar)
			}

			needEmployer := needAuth.Group("")
			{
				needEmployer.Use(middleware.CheckRole(model.RoleEmployer, model.RoleAdmin, model.RoleSuperAdmin))
				needEmployer.POST("company", companyCtrl.Create)
				needEmployer.PATCH("company/:company_id", companyCtrl.EditProfile)
				needEmployer.POST("job", jobCtrl.CreateJobHandler)
				needEmployer.PATCH("job/:id", jobCtrl.EditJobHandler)
				needEmployer.PATCH("job/:id/status", jobCtrl.UpdateJobStatus)
				needEmployer.DELETE("job/:id", jobCtrl.DeleteJobHandler)
				needEmployer.POST("file/company/:company_id/logo", middleware.SizeLimit(10<<20), fileCtrl.UploadLogo)
				needEmployer.POST("file/company/:company_id/banner", middleware.SizeLimit(10<<20), fileCtrl.UploadBanner)
			}

			needAdmin := needAuth.Group("/admin")
			{
				needAdmin.Use(middleware.CheckRole(model.RoleAdmin, model.RoleSuperAdmin))
				needAdmin.GET("stats", adminCtrl.GetDashboardStats)
				needAdmin.GET("users", adminCtrl.GetUsers)
				needAdmin.GET("jobs", adminCtrl.GetJobs)
				needAdmin.PATCH("users/:user_id/active", adminCtrl.SetUserActive)
				needAdmin.GET("guest-applications", guestCtrl.List)
				needAdmin.PATCH("guest-applications/:id/status", guestCtrl.UpdateStatus)
				needAdmin.GET("contacts", contactCtrl.List)
				needAdmin.PATCH("contacts/:id/status", contactCtrl.UpdateStatus)
				needAdmin.GET("export/applications", adminCtrl.ExportApplicationsCSV)

				needSuperAdmin := needAdmin.Group("")
				{
					needSuperAdmin.Use(middleware.CheckRole(model.RoleSuperAdmin))
					needSuperAdmin.PATCH("users/:user_id/role", adminCtrl.ChangeUserRole)
					needSuperAdmin.PATCH("companies/:company_id/verify", companyCtrl.VerifyCompany)
					needSuperAdmin.DELETE("companies/:company_id", companyCtrl.DeleteCompany)
				}
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
