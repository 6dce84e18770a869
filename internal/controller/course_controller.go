package controller

import (
	"courselab_backend/internal/service"
	"courselab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// swagger:model CreateCourseRequest
type CreateCourseRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateCourseRequest 可选字段按提交情况更新；isPublished 由发布接口单独控制
// swagger:model UpdateCourseRequest
type UpdateCourseRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
	Price       *float64 `json:"price"`
	CategoryID  *string  `json:"categoryId"`
}

// swagger:model CreateAttachmentRequest
type CreateAttachmentRequest struct {
	URL string `json:"url" binding:"required"`
}

// CreateCourse godoc
// @Summary Create a course with a title
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateCourseRequest true "Course title"
// @Success 201 {object} util.Response{data=model.Course} "Created"
// @Failure 400 {object} util.Response "Bad Request"
// @Router /api/teacher/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(claims.UserID, req.Title)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// ListOwnCourses godoc
// @Summary List courses owned by the current user
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course} "Success"
// @Router /api/teacher/courses [get]
func (c *CourseController) ListOwnCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CourseService.ListOwned(claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary Course detail with chapters and attachments
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Success 200 {object} util.Response{data=model.Course} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	course, err := c.CourseService.Get(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// UpdateCourse godoc
// @Summary Update course fields
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param body body UpdateCourseRequest true "Fields to update"
// @Success 200 {object} util.Response{data=model.Course} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId} [patch]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}

	course, err := c.CourseService.Update(claims.UserID, ctx.Param("courseId"), updates)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// PublishCourse godoc
// @Summary Publish a course
// @Description Requires title, description, imageUrl, categoryId and at least one published chapter
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Success 200 {object} util.Response{data=model.Course} "Success"
// @Failure 400 {object} util.Response "Precondition failed, message lists missing fields"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/publish [patch]
func (c *CourseController) PublishCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	course, err := c.CourseService.Publish(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// UnpublishCourse godoc
// @Summary Unpublish a course
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Success 200 {object} util.Response{data=model.Course} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/unpublish [patch]
func (c *CourseController) UnpublishCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	course, err := c.CourseService.Unpublish(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary Delete a course and its remote video assets
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Failure 502 {object} util.Response "Upstream asset service failed"
// @Router /api/teacher/courses/{courseId} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := ctx.Param("courseId")
	if err := c.CourseService.Delete(ctx.Request.Context(), claims.UserID, courseID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": courseID})
}

// CreateAttachment godoc
// @Summary Attach a hosted file to a course
// @Description Attachment name is derived from the final URL path segment
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param body body CreateAttachmentRequest true "File URL"
// @Success 201 {object} util.Response{data=model.Attachment} "Created"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/attachments [post]
func (c *CourseController) CreateAttachment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateAttachmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attachment, err := c.CourseService.CreateAttachment(claims.UserID, ctx.Param("courseId"), req.URL)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, attachment)
}

// DeleteAttachment godoc
// @Summary Remove an attachment from a course
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param attachmentId path string true "Attachment id"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/attachments/{attachmentId} [delete]
func (c *CourseController) DeleteAttachment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attachmentID := ctx.Param("attachmentId")
	if err := c.CourseService.DeleteAttachment(claims.UserID, ctx.Param("courseId"), attachmentID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": attachmentID})
}

// ListPublishedCourses godoc
// @Summary Public catalog of published courses
// @Tags catalog
// @Produce json
// @Param title query string false "Title search"
// @Param categoryId query string false "Category filter"
// @Success 200 {object} util.Response{data=[]model.Course} "Success"
// @Router /api/courses [get]
func (c *CourseController) ListPublishedCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListPublished(ctx.Request.Context(), ctx.Query("title"), ctx.Query("categoryId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
