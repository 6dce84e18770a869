package repository

import (
	"courselab_backend/internal/model"

	"gorm.io/gorm"
)

type ChapterRepository struct {
	DB *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{DB: db}
}

func (r *ChapterRepository) Create(chapter *model.Chapter) error {
	return r.DB.Create(chapter).Error
}

// FindByIDAndCourse 章节必须属于该课程，越界访问等同不存在
func (r *ChapterRepository) FindByIDAndCourse(id, courseID string) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.Where("id = ? AND course_id = ?", id, courseID).First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// FindByCourseOrdered 按 position 升序返回课程全部章节
func (r *ChapterRepository) FindByCourseOrdered(courseID string) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.DB.Where("course_id = ?", courseID).Order("position ASC").Find(&chapters).Error
	return chapters, err
}

func (r *ChapterRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Chapter{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *ChapterRepository) CountPublished(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Chapter{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&count).Error
	return count, err
}

func (r *ChapterRepository) UpdateFields(id string, updates map[string]interface{}) error {
	return r.DB.Model(&model.Chapter{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ChapterRepository) UpdatePosition(id string, position int) error {
	return r.DB.Model(&model.Chapter{}).Where("id = ?", id).Update("position", position).Error
}

func (r *ChapterRepository) SetPublished(id string, published bool) error {
	return r.DB.Model(&model.Chapter{}).Where("id = ?", id).Update("is_published", published).Error
}

func (r *ChapterRepository) Delete(chapter *model.Chapter) error {
	return r.DB.Delete(chapter).Error
}
