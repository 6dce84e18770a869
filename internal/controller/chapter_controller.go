package controller

import (
	"courselab_backend/internal/service"
	"courselab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChapterController struct {
	ChapterService *service.ChapterService
}

func NewChapterController(chapterService *service.ChapterService) *ChapterController {
	return &ChapterController{ChapterService: chapterService}
}

// swagger:model CreateChapterRequest
type CreateChapterRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateChapterRequest videoUrl 一旦提交即触发资产替换协议
// swagger:model UpdateChapterRequest
type UpdateChapterRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	VideoURL    *string  `json:"videoUrl"`
	Duration    *float64 `json:"duration"`
	IsFree      *bool    `json:"isFree"`
}

// ReorderRequest list 为期望的最终顺序，必须覆盖课程全部章节
// swagger:model ReorderRequest
type ReorderRequest struct {
	List []string `json:"list" binding:"required"`
}

// CreateChapter godoc
// @Summary Create a chapter at the end of the course
// @Tags chapters
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param body body CreateChapterRequest true "Chapter title"
// @Success 201 {object} util.Response{data=model.Chapter} "Created"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/chapters [post]
func (c *ChapterController) CreateChapter(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateChapterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	chapter, err := c.ChapterService.Create(claims.UserID, ctx.Param("courseId"), req.Title)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, chapter)
}

// ListChapters godoc
// @Summary Chapters of a course ordered by position
// @Tags chapters
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Success 200 {object} util.Response{data=[]model.Chapter} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/chapters [get]
func (c *ChapterController) ListChapters(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	chapters, err := c.ChapterService.List(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, chapters)
}

// ReorderChapters godoc
// @Summary Rewrite chapter positions to match the submitted final order
// @Description The list must contain every chapter of the course exactly once; position = index
// @Tags chapters
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param body body ReorderRequest true "Ordered chapter ids"
// @Success 200 {object} util.Response{data=[]model.Chapter} "Authoritative order after the write"
// @Failure 400 {object} util.Response "Duplicate or non-exhaustive list"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/chapters/reorder [put]
func (c *ChapterController) ReorderChapters(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	chapters, err := c.ChapterService.Reorder(claims.UserID, ctx.Param("courseId"), req.List)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, chapters)
}

// GetChapter godoc
// @Summary Chapter detail with its video asset
// @Tags chapters
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param chapterId path string true "Chapter id"
// @Success 200 {object} util.Response{data=model.Chapter} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/chapters/{chapterId} [get]
func (c *ChapterController) GetChapter(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	chapter, err := c.ChapterService.Get(claims.UserID, ctx.Param("courseId"), ctx.Param("chapterId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, chapter)
}

// UpdateChapter godoc
// @Summary Update chapter fields, replacing the video asset when videoUrl changes
// @Tags chapters
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param chapterId path string true "Chapter id"
// @Param body body UpdateChapterRequest true "Fields to update"
// @Success 200 {object} util.Response{data=model.Chapter} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Failure 502 {object} util.Response "Upstream asset service failed, retry later"
// @Router /api/teacher/courses/{courseId}/chapters/{chapterId} [patch]
func (c *ChapterController) UpdateChapter(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateChapterRequest
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
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.IsFree != nil {
		updates["is_free"] = *req.IsFree
	}

	chapter, err := c.ChapterService.Update(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"), ctx.Param("chapterId"), updates)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, chapter)
}

// PublishChapter godoc
// @Summary Publish a chapter
// @Description Requires title, description, videoUrl and an encoded video asset
// @Tags chapters
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param chapterId path string true "Chapter id"
// @Success 200 {object} util.Response{data=model.Chapter} "Success"
// @Failure 400 {object} util.Response "Precondition failed, message lists missing fields"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/chapters/{chapterId}/publish [patch]
func (c *ChapterController) PublishChapter(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	chapter, err := c.ChapterService.Publish(claims.UserID, ctx.Param("courseId"), ctx.Param("chapterId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, chapter)
}

// UnpublishChapter godoc
// @Summary Unpublish a chapter, demoting the course if none remain published
// @Tags chapters
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param chapterId path string true "Chapter id"
// @Success 200 {object} util.Response{data=model.Chapter} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/teacher/courses/{courseId}/chapters/{chapterId}/unpublish [patch]
func (c *ChapterController) UnpublishChapter(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	chapter, err := c.ChapterService.Unpublish(claims.UserID, ctx.Param("courseId"), ctx.Param("chapterId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, chapter)
}

// DeleteChapter godoc
// @Summary Delete a chapter and its remote video asset
// @Tags chapters
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course id"
// @Param chapterId path string true "Chapter id"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Failure 502 {object} util.Response "Upstream asset service failed, retry later"
// @Router /api/teacher/courses/{courseId}/chapters/{chapterId} [delete]
func (c *ChapterController) DeleteChapter(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	deletedID, err := c.ChapterService.Delete(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"), ctx.Param("chapterId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": deletedID})
}
