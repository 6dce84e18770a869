package service

import (
	"context"
	"fmt"
	"testing"

	"courselab_backend/internal/model"
	"courselab_backend/internal/repository"
	"courselab_backend/pkg/database"
	"courselab_backend/pkg/encoding"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeEncoder 记录资产操作调用，按序生成可预测的资产 id
type fakeEncoder struct {
	createdInputs []string
	deletedIDs    []string
	seq           int
	createErr     error
	deleteErr     error
}

func (f *fakeEncoder) CreateAsset(ctx context.Context, inputURL, policy string) (*encoding.Asset, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	f.createdInputs = append(f.createdInputs, inputURL)
	id := fmt.Sprintf("asset-%d", f.seq)
	return &encoding.Asset{
		ID:          id,
		Status:      "preparing",
		PlaybackIDs: []string{"pb-" + id},
	}, nil
}

func (f *fakeEncoder) DeleteAsset(ctx context.Context, assetID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, assetID)
	return nil
}

type testEnv struct {
	db       *gorm.DB
	encoder  *fakeEncoder
	courses  *CourseService
	chapters *ChapterService
	assets   *repository.VideoAssetRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	courseRepo := repository.NewCourseRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	assetRepo := repository.NewVideoAssetRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	enc := &fakeEncoder{}
	courses := NewCourseService(courseRepo, chapterRepo, assetRepo, attachmentRepo, enc, nil)
	chapters := NewChapterService(courseRepo, chapterRepo, assetRepo, enc, courses)

	return &testEnv{
		db:       db,
		encoder:  enc,
		courses:  courses,
		chapters: chapters,
		assets:   assetRepo,
	}
}

const testOwnerID = uint(1)

func (e *testEnv) mustCreateCourse(t *testing.T, title string) *model.Course {
	t.Helper()
	course, err := e.courses.Create(testOwnerID, title)
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func (e *testEnv) mustCreateChapter(t *testing.T, courseID, title string) *model.Chapter {
	t.Helper()
	chapter, err := e.chapters.Create(testOwnerID, courseID, title)
	if err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	return chapter
}

// mustFillCourse 补齐课程发布所需的全部字段
func (e *testEnv) mustFillCourse(t *testing.T, courseID string) {
	t.Helper()
	var category model.Category
	if err := e.db.First(&category).Error; err != nil {
		t.Fatalf("find seeded category: %v", err)
	}
	_, err := e.courses.Update(testOwnerID, courseID, map[string]interface{}{
		"description": "A course about things",
		"image_url":   "https://cdn.example.com/cover.png",
		"category_id": category.ID,
	})
	if err != nil {
		t.Fatalf("fill course: %v", err)
	}
}

// mustPublishableChapter 补齐并发布一个章节
func (e *testEnv) mustPublishableChapter(t *testing.T, courseID, title string) *model.Chapter {
	t.Helper()
	chapter := e.mustCreateChapter(t, courseID, title)
	_, err := e.chapters.Update(context.Background(), testOwnerID, courseID, chapter.ID, map[string]interface{}{
		"description": "chapter notes",
		"video_url":   "https://cdn.example.com/" + chapter.ID + ".mp4",
	})
	if err != nil {
		t.Fatalf("fill chapter: %v", err)
	}
	published, err := e.chapters.Publish(testOwnerID, courseID, chapter.ID)
	if err != nil {
		t.Fatalf("publish chapter: %v", err)
	}
	return published
}

func chapterIDsInOrder(chapters []model.Chapter) []string {
	ids := make([]string, len(chapters))
	for i, ch := range chapters {
		ids[i] = ch.ID
	}
	return ids
}
