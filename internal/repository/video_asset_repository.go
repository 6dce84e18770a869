package repository

import (
	"courselab_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

type VideoAssetRepository struct {
	DB *gorm.DB
}

func NewVideoAssetRepository(db *gorm.DB) *VideoAssetRepository {
	return &VideoAssetRepository{DB: db}
}

func (r *VideoAssetRepository) Create(asset *model.VideoAsset) error {
	return r.DB.Create(asset).Error
}

// FindByChapter 章节至多一条资产记录，没有则返回 (nil, nil)
func (r *VideoAssetRepository) FindByChapter(chapterID string) (*model.VideoAsset, error) {
	var asset model.VideoAsset
	err := r.DB.Where("chapter_id = ?", chapterID).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *VideoAssetRepository) Delete(asset *model.VideoAsset) error {
	return r.DB.Delete(asset).Error
}

// CountStale 统计处于不一致窗口的章节：videoUrl 已写入但资产记录缺失
// 只做观测，不做修复
func (r *VideoAssetRepository) CountStale() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Chapter{}).
		Where("video_url <> ''").
		Where("id NOT IN (?)", r.DB.Model(&model.VideoAsset{}).Select("chapter_id")).
		Count(&count).Error
	return count, err
}
