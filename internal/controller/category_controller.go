package controller

import (
	"courselab_backend/internal/repository"
	"courselab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	CategoryRepo *repository.CategoryRepository
}

func NewCategoryController(categoryRepo *repository.CategoryRepository) *CategoryController {
	return &CategoryController{CategoryRepo: categoryRepo}
}

// ListCategories godoc
// @Summary All course categories
// @Tags catalog
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Category} "Success"
// @Router /api/categories [get]
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	categories, err := c.CategoryRepo.FindAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}
