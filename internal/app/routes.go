package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/qa-overflow/core-go/internal/middleware"
	"github.com/qa-overflow/core-go/internal/modules/content/moderation"
	"github.com/qa-overflow/core-go/internal/modules/content/question"
	"github.com/qa-overflow/core-go/internal/modules/processing/ai"
	pkgredis "github.com/qa-overflow/core-go/internal/pkg/redis"
	"github.com/qa-overflow/core-go/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client) error {
	questionSvc := question.NewService(a.db, a.logger)
	if err := questionSvc.EnsureAIUser(); err != nil {
		return fmt.Errorf("ensure AI user: %w", err)
	}

	aiClient := ai.NewProviderClient(a.cfg.AI)
	aiSvc := ai.NewService(questionSvc, aiClient, a.cfg.AI, a.logger)

	moderationSvc := moderation.NewService(questionSvc)

	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authMW := middleware.Auth()
	modMW := middleware.RequireModerator()

	api := a.router.Group("/api")
	api.Use(middleware.OptionalAuth())
	api.Use(middleware.RateLimit(rc.Raw()))

	question.NewHandler(questionSvc, aiSvc.AutoGenerate).RegisterRoutes(api, authMW)
	ai.NewHandler(aiSvc).RegisterRoutes(api, authMW)
	moderation.NewHandler(moderationSvc).RegisterRoutes(api, authMW, modMW)

	a.router.NoRoute(func(c *gin.Context) {
		response.NotFoundMsg(c, "Not found")
	})
	a.router.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})
	return nil
}
