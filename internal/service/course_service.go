package service

import (
	"context"
	"courselab_backend/internal/model"
	"courselab_backend/internal/repository"
	"courselab_backend/internal/util"
	"courselab_backend/pkg/encoding"
	"courselab_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const catalogCacheKey = "catalog:published"
const catalogCacheTTL = 5 * time.Minute

// CourseService 课程的增删改、发布状态机与附件管理
type CourseService struct {
	CourseRepo     *repository.CourseRepository
	ChapterRepo    *repository.ChapterRepository
	AssetRepo      *repository.VideoAssetRepository
	AttachmentRepo *repository.AttachmentRepository
	Encoder        encoding.AssetAPI
	Redis          *redis.Client
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	chapterRepo *repository.ChapterRepository,
	assetRepo *repository.VideoAssetRepository,
	attachmentRepo *repository.AttachmentRepository,
	encoder encoding.AssetAPI,
	rdb *redis.Client,
) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		ChapterRepo:    chapterRepo,
		AssetRepo:      assetRepo,
		AttachmentRepo: attachmentRepo,
		Encoder:        encoder,
		Redis:          rdb,
	}
}

func (s *CourseService) Create(ownerID uint, title string) (*model.Course, error) {
	course := &model.Course{
		OwnerID: ownerID,
		Title:   title,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Get(ownerID uint, courseID string) (*model.Course, error) {
	course, err := s.CourseRepo.FindDetailByIDAndOwner(courseID, ownerID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	return course, nil
}

func (s *CourseService) ListOwned(ownerID uint) ([]model.Course, error) {
	return s.CourseRepo.FindByOwner(ownerID)
}

// ListPublished 公开目录；无过滤条件时走 Redis 缓存
func (s *CourseService) ListPublished(ctx context.Context, title, categoryID string) ([]model.Course, error) {
	cacheable := title == "" && categoryID == "" && s.Redis != nil

	if cacheable {
		if val, err := s.Redis.Get(ctx, catalogCacheKey).Result(); err == nil {
			var cached []model.Course
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	courses, err := s.CourseRepo.FindPublished(title, categoryID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if data, err := json.Marshal(courses); err == nil {
			s.Redis.Set(ctx, catalogCacheKey, data, catalogCacheTTL)
		}
	}
	return courses, nil
}

// Update 字段级更新；isPublished 不允许经此修改，发布走独立接口
func (s *CourseService) Update(ownerID uint, courseID string, updates map[string]interface{}) (*model.Course, error) {
	if _, err := s.CourseRepo.FindByIDAndOwner(courseID, ownerID); err != nil {
		return nil, util.ErrNotFound
	}

	delete(updates, "is_published")

	if price, ok := updates["price"].(float64); ok && price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", util.ErrInvalidArgument)
	}

	if len(updates) > 0 {
		if err := s.CourseRepo.UpdateFields(courseID, updates); err != nil {
			return nil, err
		}
	}
	return s.CourseRepo.FindByIDAndOwner(courseID, ownerID)
}

// Publish Draft→Published：title/description/imageUrl/categoryId 齐备
// 且至少有一个已发布章节，缺一即 PreconditionFailed 并列明缺失项
func (s *CourseService) Publish(ownerID uint, courseID string) (*model.Course, error) {
	course, err := s.CourseRepo.FindByIDAndOwner(courseID, ownerID)
	if err != nil {
		return nil, util.ErrNotFound
	}

	missing := course.MissingPublishFields()
	publishedChapters, err := s.ChapterRepo.CountPublished(courseID)
	if err != nil {
		return nil, err
	}
	if publishedChapters == 0 {
		missing = append(missing, "publishedChapter")
	}
	if len(missing) > 0 {
		return nil, &util.PreconditionFailedError{Missing: missing}
	}

	if err := s.CourseRepo.SetPublished(courseID, true); err != nil {
		return nil, err
	}
	course.IsPublished = true
	s.invalidateCatalog()
	return course, nil
}

// Unpublish Published→Draft 无条件允许，章节状态不受影响
func (s *CourseService) Unpublish(ownerID uint, courseID string) (*model.Course, error) {
	course, err := s.CourseRepo.FindByIDAndOwner(courseID, ownerID)
	if err != nil {
		return nil, util.ErrNotFound
	}

	if err := s.CourseRepo.SetPublished(courseID, false); err != nil {
		return nil, err
	}
	course.IsPublished = false
	s.invalidateCatalog()
	return course, nil
}

// RecomputePublishability 章节变动后的课程级重估：
// 没有已发布章节的课程不允许保持 Published，自动降回 Draft。
// 只降不升——条件恢复后的再发布必须是作者的显式动作。
func (s *CourseService) RecomputePublishability(courseID string) error {
	publishedChapters, err := s.ChapterRepo.CountPublished(courseID)
	if err != nil {
		return err
	}
	if publishedChapters > 0 {
		return nil
	}

	if err := s.CourseRepo.SetPublished(courseID, false); err != nil {
		return err
	}
	logger.Log.Info("course demoted to draft: no published chapters remain",
		zap.String("courseId", courseID))
	s.invalidateCatalog()
	return nil
}

// Delete 删除课程：先清理每个章节的远端资产，再删课程
// （章节、附件、资产记录随库内级联移除）
func (s *CourseService) Delete(ctx context.Context, ownerID uint, courseID string) error {
	course, err := s.CourseRepo.FindDetailByIDAndOwner(courseID, ownerID)
	if err != nil {
		return util.ErrNotFound
	}

	for _, chapter := range course.Chapters {
		asset, err := s.AssetRepo.FindByChapter(chapter.ID)
		if err != nil {
			return err
		}
		if asset == nil {
			continue
		}
		if err := s.Encoder.DeleteAsset(ctx, asset.ExternalAssetID); err != nil {
			return err
		}
		if err := s.AssetRepo.Delete(asset); err != nil {
			return err
		}
	}

	if err := s.CourseRepo.Delete(course); err != nil {
		return err
	}
	s.invalidateCatalog()
	return nil
}

// CreateAttachment 附件名取 URL 路径最后一段
func (s *CourseService) CreateAttachment(ownerID uint, courseID, url string) (*model.Attachment, error) {
	if _, err := s.CourseRepo.FindByIDAndOwner(courseID, ownerID); err != nil {
		return nil, util.ErrNotFound
	}
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", util.ErrInvalidArgument)
	}

	attachment := &model.Attachment{
		CourseID: courseID,
		URL:      url,
		Name:     util.NameFromURL(url),
	}
	if err := s.AttachmentRepo.Create(attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *CourseService) DeleteAttachment(ownerID uint, courseID, attachmentID string) error {
	if _, err := s.CourseRepo.FindByIDAndOwner(courseID, ownerID); err != nil {
		return util.ErrNotFound
	}
	attachment, err := s.AttachmentRepo.FindByIDAndCourse(attachmentID, courseID)
	if err != nil {
		return util.ErrNotFound
	}
	return s.AttachmentRepo.Delete(attachment)
}

func (s *CourseService) invalidateCatalog() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), catalogCacheKey).Err(); err != nil {
		logger.Log.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
