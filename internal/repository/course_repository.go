package repository

import (
	"courselab_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

// FindByIDAndOwner 归属过滤查询：id 与 ownerId 同时命中才返回
// 查不到与不属于调用者不作区分，统一走 gorm.ErrRecordNotFound
func (r *CourseRepository) FindByIDAndOwner(id string, ownerID uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("id = ? AND owner_id = ?", id, ownerID).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindDetailByIDAndOwner 编辑页用，带章节（按 position 升序）与附件
func (r *CourseRepository) FindDetailByIDAndOwner(id string, ownerID uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Chapters.VideoAsset").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByOwner(ownerID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

// FindPublished 公开目录：标题模糊匹配 + 分类过滤
func (r *CourseRepository) FindPublished(title, categoryID string) ([]model.Course, error) {
	var courses []model.Course
	query := r.DB.Where("is_published = ?", true)
	if title != "" {
		query = query.Where("title LIKE ?", "%"+title+"%")
	}
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.
		Preload("Category").
		Preload("Chapters", "is_published = ?", true).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// UpdateFields 字段级更新，调用方负责剔除 is_published
func (r *CourseRepository) UpdateFields(id string, updates map[string]interface{}) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", id).Updates(updates).Error
}

func (r *CourseRepository) SetPublished(id string, published bool) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", id).Update("is_published", published).Error
}

func (r *CourseRepository) Delete(course *model.Course) error {
	return r.DB.Select("Chapters", "Attachments").Delete(course).Error
}
