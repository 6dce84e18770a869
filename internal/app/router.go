package app

import (
	"courselab_backend/internal/config"
	"courselab_backend/internal/middleware"
	"courselab_backend/internal/model"

	"courselab_backend/docs"
	"courselab_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
		api.POST("/register", c.auth.Register)
		api.POST("/login", c.auth.Login)

		// 公开目录，仅返回已发布课程
		api.GET("/courses", c.course.ListPublishedCourses)
		api.GET("/categories", c.category.ListCategories)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg))
	authed.Use(middleware.ActivityMiddleware(repos.user))
	{
		authed.GET("/profile", c.auth.GetProfile)

		upload := authed.Group("/upload")
		{
			upload.POST("/image", c.upload.UploadImage)
			upload.POST("/attachment", c.upload.UploadAttachment)
			upload.POST("/video", c.upload.UploadVideo)
		}
	}

	teacher := authed.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		courses := teacher.Group("/courses")
		{
			courses.POST("", c.course.CreateCourse)
			courses.GET("", c.course.ListOwnCourses)
			courses.GET("/:courseId", c.course.GetCourse)
			courses.PATCH("/:courseId", c.course.UpdateCourse)
			courses.DELETE("/:courseId", c.course.DeleteCourse)
			courses.PATCH("/:courseId/publish", c.course.PublishCourse)
			courses.PATCH("/:courseId/unpublish", c.course.UnpublishCourse)

			courses.POST("/:courseId/attachments", c.course.CreateAttachment)
			courses.DELETE("/:courseId/attachments/:attachmentId", c.course.DeleteAttachment)

			chapters := courses.Group("/:courseId/chapters")
			{
				chapters.POST("", c.chapter.CreateChapter)
				chapters.GET("", c.chapter.ListChapters)
				chapters.PUT("/reorder", c.chapter.ReorderChapters)
				chapters.GET("/:chapterId", c.chapter.GetChapter)
				chapters.PATCH("/:chapterId", c.chapter.UpdateChapter)
				chapters.DELETE("/:chapterId", c.chapter.DeleteChapter)
				chapters.PATCH("/:chapterId/publish", c.chapter.PublishChapter)
				chapters.PATCH("/:chapterId/unpublish", c.chapter.UnpublishChapter)
			}
		}
	}
}
