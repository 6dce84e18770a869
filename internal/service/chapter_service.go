package service

import (
	"context"
	"courselab_backend/internal/model"
	"courselab_backend/internal/repository"
	"courselab_backend/internal/util"
	"courselab_backend/pkg/encoding"
	"courselab_backend/pkg/logger"
	"fmt"

	"go.uber.org/zap"
)

// ChapterService 章节的增删改、排序与发布状态机，
// 以及章节视频与外部编码资产的联动（替换协议）。
type ChapterService struct {
	CourseRepo  *repository.CourseRepository
	ChapterRepo *repository.ChapterRepository
	AssetRepo   *repository.VideoAssetRepository
	Encoder     encoding.AssetAPI
	Courses     *CourseService
}

func NewChapterService(
	courseRepo *repository.CourseRepository,
	chapterRepo *repository.ChapterRepository,
	assetRepo *repository.VideoAssetRepository,
	encoder encoding.AssetAPI,
	courses *CourseService,
) *ChapterService {
	return &ChapterService{
		CourseRepo:  courseRepo,
		ChapterRepo: chapterRepo,
		AssetRepo:   assetRepo,
		Encoder:     encoder,
		Courses:     courses,
	}
}

// ownCourse 归属校验，查不到即 ErrNotFound（不区分"不存在"与"不是你的"）
func (s *ChapterService) ownCourse(courseID string, ownerID uint) error {
	if _, err := s.CourseRepo.FindByIDAndOwner(courseID, ownerID); err != nil {
		return util.ErrNotFound
	}
	return nil
}

// Create 新章节排在队尾：position = 当前章节数
func (s *ChapterService) Create(ownerID uint, courseID, title string) (*model.Chapter, error) {
	if err := s.ownCourse(courseID, ownerID); err != nil {
		return nil, err
	}

	count, err := s.ChapterRepo.CountByCourse(courseID)
	if err != nil {
		return nil, err
	}

	chapter := &model.Chapter{
		CourseID: courseID,
		Title:    title,
		Position: int(count),
	}
	if err := s.ChapterRepo.Create(chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

func (s *ChapterService) Get(ownerID uint, courseID, chapterID string) (*model.Chapter, error) {
	if err := s.ownCourse(courseID, ownerID); err != nil {
		return nil, err
	}
	chapter, err := s.ChapterRepo.FindByIDAndCourse(chapterID, courseID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if asset, err := s.AssetRepo.FindByChapter(chapterID); err == nil {
		chapter.VideoAsset = asset
	}
	return chapter, nil
}

func (s *ChapterService) List(ownerID uint, courseID string) ([]model.Chapter, error) {
	if err := s.ownCourse(courseID, ownerID); err != nil {
		return nil, err
	}
	return s.ChapterRepo.FindByCourseOrdered(courseID)
}

// Reorder 按给定的最终顺序重写 position：第 i 个元素的 position 置为 i。
// 列表必须恰好覆盖课程的全部章节（无重复、无遗漏、无外部 id），
// 否则在任何写入之前就以 ErrInvalidArgument 拒绝；空列表对空课程是 no-op。
// 操作幂等：同一列表应用两次结果相同。中途失败立即上报，
// 调用方需重新拉取权威顺序，不得沿用乐观视图。
func (s *ChapterService) Reorder(ownerID uint, courseID string, orderedIDs []string) ([]model.Chapter, error) {
	if err := s.ownCourse(courseID, ownerID); err != nil {
		return nil, err
	}

	existing, err := s.ChapterRepo.FindByCourseOrdered(courseID)
	if err != nil {
		return nil, err
	}

	if len(orderedIDs) == 0 && len(existing) == 0 {
		return existing, nil
	}
	if len(orderedIDs) != len(existing) {
		return nil, fmt.Errorf("%w: reorder list must cover all %d chapters, got %d",
			util.ErrInvalidArgument, len(existing), len(orderedIDs))
	}

	members := make(map[string]bool, len(existing))
	for _, ch := range existing {
		members[ch.ID] = true
	}
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate chapter id %s in reorder list", util.ErrInvalidArgument, id)
		}
		if !members[id] {
			return nil, fmt.Errorf("%w: chapter %s does not belong to this course", util.ErrInvalidArgument, id)
		}
		seen[id] = true
	}

	// 列表即最终顺序，无条件覆写，不与旧 position 做 diff
	for i, id := range orderedIDs {
		if err := s.ChapterRepo.UpdatePosition(id, i); err != nil {
			logger.Log.Error("chapter reorder aborted mid-sequence",
				zap.String("courseId", courseID),
				zap.String("chapterId", id),
				zap.Int("position", i),
				zap.Error(err))
			return nil, fmt.Errorf("reorder chapter %s: %w", id, err)
		}
	}

	// 返回库内的权威顺序
	return s.ChapterRepo.FindByCourseOrdered(courseID)
}

// Update 更新章节字段。isPublished 不允许经此修改，发布走独立接口。
// updates 携带 video_url 时触发视频替换协议，
// 各步骤严格串行，任一步失败即中止并保留已写入的中间状态。
func (s *ChapterService) Update(ctx context.Context, ownerID uint, courseID, chapterID string, updates map[string]interface{}) (*model.Chapter, error) {
	if err := s.ownCourse(courseID, ownerID); err != nil {
		return nil, err
	}
	if _, err := s.ChapterRepo.FindByIDAndCourse(chapterID, courseID); err != nil {
		return nil, util.ErrNotFound
	}

	delete(updates, "is_published")

	// 第 1 步：先落库字段（含 video_url）
	if len(updates) > 0 {
		if err := s.ChapterRepo.UpdateFields(chapterID, updates); err != nil {
			return nil, err
		}
	}

	if videoURL, ok := updates["video_url"].(string); ok && videoURL != "" {
		if err := s.replaceVideo(ctx, chapterID, videoURL); err != nil {
			return nil, err
		}
	}

	chapter, err := s.ChapterRepo.FindByIDAndCourse(chapterID, courseID)
	if err != nil {
		return nil, err
	}
	if asset, err := s.AssetRepo.FindByChapter(chapterID); err == nil {
		chapter.VideoAsset = asset
	}
	return chapter, nil
}

// replaceVideo 视频替换协议第 2~4 步：
//  2. 旧资产先远端删除、再删记录——远端删除失败则中止，保证章节不会同时持有两个活资产；
//  3. 以新源 URL 创建远端资产（公开播放策略）；
//  4. 落库新资产记录。
//
// 第 3 步超时后的重试不在本协议内自动发生：此时 video_url 已指向新值而资产缺失，
// 该窗口由发布守卫兜底（缺资产即不可发布），巡检只计数不修复。
func (s *ChapterService) replaceVideo(ctx context.Context, chapterID, sourceURL string) error {
	existing, err := s.AssetRepo.FindByChapter(chapterID)
	if err != nil {
		return err
	}
	if existing != nil {
		if err := s.Encoder.DeleteAsset(ctx, existing.ExternalAssetID); err != nil {
			logger.Log.Warn("stale video asset survives: remote delete failed",
				zap.String("chapterId", chapterID),
				zap.String("assetId", existing.ExternalAssetID),
				zap.Error(err))
			return err
		}
		if err := s.AssetRepo.Delete(existing); err != nil {
			return err
		}
	}

	created, err := s.Encoder.CreateAsset(ctx, sourceURL, encoding.PolicyPublic)
	if err != nil {
		logger.Log.Warn("chapter entered videoUrl-updated/asset-pending window",
			zap.String("chapterId", chapterID),
			zap.Error(err))
		return err
	}

	return s.AssetRepo.Create(&model.VideoAsset{
		ChapterID:       chapterID,
		ExternalAssetID: created.ID,
		PlaybackID:      created.PlaybackID(),
	})
}

// Publish Draft→Published，title/description/videoUrl 与资产记录缺一不可
func (s *ChapterService) Publish(ownerID uint, courseID, chapterID string) (*model.Chapter, error) {
	if err := s.ownCourse(courseID, ownerID); err != nil {
		return nil, err
	}
	chapter, err := s.ChapterRepo.FindByIDAndCourse(chapterID, courseID)
	if err != nil {
		return nil, util.ErrNotFound
	}

	missing := chapter.MissingPublishFields()
	asset, err := s.AssetRepo.FindByChapter(chapterID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		missing = append(missing, "videoAsset")
	}
	if len(missing) > 0 {
		return nil, &util.PreconditionFailedError{Missing: missing}
	}

	if err := s.ChapterRepo.SetPublished(chapterID, true); err != nil {
		return nil, err
	}
	chapter.IsPublished = true
	return chapter, nil
}

// Unpublish Published→Draft 无条件允许；随后重估父课程，
// 没有任何已发布章节时课程自动降回 Draft（只自动降、不自动升）
func (s *ChapterService) Unpublish(ownerID uint, courseID, chapterID string) (*model.Chapter, error) {
	if err := s.ownCourse(courseID, ownerID); err != nil {
		return nil, err
	}
	chapter, err := s.ChapterRepo.FindByIDAndCourse(chapterID, courseID)
	if err != nil {
		return nil, util.ErrNotFound
	}

	if err := s.ChapterRepo.SetPublished(chapterID, false); err != nil {
		return nil, err
	}
	chapter.IsPublished = false

	if err := s.Courses.RecomputePublishability(courseID); err != nil {
		return nil, err
	}
	return chapter, nil
}

// Delete 删除章节：远端资产→资产记录→章节记录，最后重估父课程。
// 远端删除超时不视为已删除，保留记录等待重试。
func (s *ChapterService) Delete(ctx context.Context, ownerID uint, courseID, chapterID string) (string, error) {
	if err := s.ownCourse(courseID, ownerID); err != nil {
		return "", err
	}
	chapter, err := s.ChapterRepo.FindByIDAndCourse(chapterID, courseID)
	if err != nil {
		return "", util.ErrNotFound
	}

	asset, err := s.AssetRepo.FindByChapter(chapterID)
	if err != nil {
		return "", err
	}
	if asset != nil {
		if err := s.Encoder.DeleteAsset(ctx, asset.ExternalAssetID); err != nil {
			return "", err
		}
		if err := s.AssetRepo.Delete(asset); err != nil {
			return "", err
		}
	}

	if err := s.ChapterRepo.Delete(chapter); err != nil {
		return "", err
	}

	if err := s.Courses.RecomputePublishability(courseID); err != nil {
		return "", err
	}
	return chapterID, nil
}
