package routes

import (
	"manualctf/challenges"
	"manualctf/controllers"
	"manualctf/metrics"
	"manualctf/middlewares"
	"manualctf/models"
	"manualctf/plugins/manual"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 注册主机接口并加载题型插件
func SetupRouter(reg *challenges.Registry) (*gin.Engine, error) {
	r := gin.New()
	r.Use(middlewares.RequestLogger(), middlewares.Recovery())

	chal := controllers.NewChallengeController(reg)

	apiV1 := r.Group("/api/v1")
	{
		usersPublic := apiV1.Group("/users")
		{
			usersPublic.POST("/register", controllers.Register)
			usersPublic.POST("/login", controllers.Login)
		}
		usersAuth := apiV1.Group("/users")
		usersAuth.Use(middlewares.JWTAuthMiddleware())
		{
			usersAuth.GET("/me", controllers.GetMe)
		}

		teamRoutes := apiV1.Group("/teams")
		teamRoutes.Use(middlewares.JWTAuthMiddleware())
		{
			teamRoutes.POST("", controllers.CreateTeam)
			teamRoutes.POST("/join", controllers.JoinTeam)
			teamRoutes.POST("/leave", controllers.LeaveTeam)
		}

		challengeRoutes := apiV1.Group("/challenges")
		challengeRoutes.Use(middlewares.JWTAuthMiddleware())
		{
			challengeRoutes.GET("", chal.List)
			challengeRoutes.GET("/types", middlewares.RoleAuthMiddleware(models.RoleAdmin), chal.ListTypes)
			challengeRoutes.GET("/:id", chal.Detail)
			challengeRoutes.POST("/attempt", chal.Attempt)
		}

		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(middlewares.AdminOnly()...)
		{
			adminRoutes.POST("/challenges", chal.AdminCreate)
			adminRoutes.PATCH("/challenges/:id", chal.AdminUpdate)
			adminRoutes.DELETE("/challenges/:id", chal.AdminDelete)
			adminRoutes.GET("/submissions", controllers.GetSubmissionLogs)
			adminRoutes.GET("/teams", controllers.AdminGetTeams)
			adminRoutes.PUT("/teams/:id/status", controllers.AdminUpdateTeamStatus)
			adminRoutes.DELETE("/teams/:id", controllers.AdminDeleteTeam)
		}

		apiV1.GET("/scoreboard", controllers.GetScoreboard)
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	if err := reg.Register(challenges.StandardChallenge{}); err != nil {
		return nil, err
	}
	if err := manual.Load(r, reg); err != nil {
		return nil, err
	}
	return r, nil
}
