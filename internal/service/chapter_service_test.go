package service

import (
	"context"
	"errors"
	"testing"

	"courselab_backend/internal/model"
	"courselab_backend/internal/util"
)

func TestCreateChapterAppendsAtEnd(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")

	first := env.mustCreateChapter(t, course.ID, "Intro")
	second := env.mustCreateChapter(t, course.ID, "Setup")

	if first.Position != 0 {
		t.Errorf("first chapter position = %d, want 0", first.Position)
	}
	if second.Position != 1 {
		t.Errorf("second chapter position = %d, want 1", second.Position)
	}
}

func TestChapterOwnershipMaskedAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Private course")
	chapter := env.mustCreateChapter(t, course.ID, "Intro")

	const strangerID = uint(99)
	if _, err := env.chapters.Get(strangerID, course.ID, chapter.ID); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("foreign access error = %v, want ErrNotFound", err)
	}
	if _, err := env.chapters.Publish(strangerID, course.ID, chapter.ID); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("foreign publish error = %v, want ErrNotFound", err)
	}
}

func TestReorderRewritesPositions(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	a := env.mustCreateChapter(t, course.ID, "A")
	b := env.mustCreateChapter(t, course.ID, "B")
	c := env.mustCreateChapter(t, course.ID, "C")

	result, err := env.chapters.Reorder(testOwnerID, course.ID, []string{b.ID, c.ID, a.ID})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	got := chapterIDsInOrder(result)
	want := []string{b.ID, c.ID, a.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	for i, ch := range result {
		if ch.Position != i {
			t.Errorf("chapter %s position = %d, want %d", ch.ID, ch.Position, i)
		}
	}
}

func TestReorderIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	a := env.mustCreateChapter(t, course.ID, "A")
	b := env.mustCreateChapter(t, course.ID, "B")

	order := []string{b.ID, a.ID}
	first, err := env.chapters.Reorder(testOwnerID, course.ID, order)
	if err != nil {
		t.Fatalf("first reorder: %v", err)
	}
	second, err := env.chapters.Reorder(testOwnerID, course.ID, order)
	if err != nil {
		t.Fatalf("second reorder: %v", err)
	}

	firstIDs := chapterIDsInOrder(first)
	secondIDs := chapterIDsInOrder(second)
	for i := range firstIDs {
		if firstIDs[i] != secondIDs[i] {
			t.Fatalf("second apply changed order at %d: %s vs %s", i, firstIDs[i], secondIDs[i])
		}
	}
}

func TestReorderRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	a := env.mustCreateChapter(t, course.ID, "A")
	env.mustCreateChapter(t, course.ID, "B")

	_, err := env.chapters.Reorder(testOwnerID, course.ID, []string{a.ID, a.ID})
	if !errors.Is(err, util.ErrInvalidArgument) {
		t.Fatalf("duplicate list error = %v, want ErrInvalidArgument", err)
	}
}

func TestReorderRejectsPartialList(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	a := env.mustCreateChapter(t, course.ID, "A")
	b := env.mustCreateChapter(t, course.ID, "B")
	env.mustCreateChapter(t, course.ID, "C")

	_, err := env.chapters.Reorder(testOwnerID, course.ID, []string{a.ID, b.ID})
	if !errors.Is(err, util.ErrInvalidArgument) {
		t.Fatalf("partial list error = %v, want ErrInvalidArgument", err)
	}

	// 拒绝必须发生在任何写入之前
	chapters, err := env.chapters.List(testOwnerID, course.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, ch := range chapters {
		if ch.Position != i {
			t.Errorf("position mutated despite rejection: %s at %d", ch.ID, ch.Position)
		}
	}
}

func TestReorderRejectsForeignChapter(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Course one")
	other := env.mustCreateCourse(t, "Course two")
	a := env.mustCreateChapter(t, course.ID, "A")
	foreign := env.mustCreateChapter(t, other.ID, "X")

	_, err := env.chapters.Reorder(testOwnerID, course.ID, []string{foreign.ID})
	if !errors.Is(err, util.ErrInvalidArgument) {
		t.Fatalf("foreign id error = %v, want ErrInvalidArgument", err)
	}
	_ = a
}

func TestReorderEmptyCourseIsNoop(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Empty course")

	result, err := env.chapters.Reorder(testOwnerID, course.ID, nil)
	if err != nil {
		t.Fatalf("empty reorder: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected empty result, got %d chapters", len(result))
	}
}

func TestChapterPublishListsMissingPreconditions(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	chapter := env.mustCreateChapter(t, course.ID, "Intro")

	_, err := env.chapters.Publish(testOwnerID, course.ID, chapter.ID)
	pf, ok := util.IsPreconditionFailed(err)
	if !ok {
		t.Fatalf("publish error = %v, want PreconditionFailedError", err)
	}

	want := map[string]bool{"description": true, "videoUrl": true, "videoAsset": true}
	if len(pf.Missing) != len(want) {
		t.Fatalf("missing = %v, want fields %v", pf.Missing, want)
	}
	for _, field := range pf.Missing {
		if !want[field] {
			t.Errorf("unexpected missing field %q", field)
		}
	}
}

func TestChapterPublishRequiresAssetRecord(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	chapter := env.mustCreateChapter(t, course.ID, "Intro")

	// video_url 落库但资产创建失败，进入不一致窗口
	env.encoder.createErr = util.ErrUpstreamAsset
	_, err := env.chapters.Update(context.Background(), testOwnerID, course.ID, chapter.ID, map[string]interface{}{
		"description": "notes",
		"video_url":   "https://cdn.example.com/v.mp4",
	})
	if !errors.Is(err, util.ErrUpstreamAsset) {
		t.Fatalf("update error = %v, want ErrUpstreamAsset", err)
	}

	_, err = env.chapters.Publish(testOwnerID, course.ID, chapter.ID)
	pf, ok := util.IsPreconditionFailed(err)
	if !ok {
		t.Fatalf("publish error = %v, want PreconditionFailedError", err)
	}
	if len(pf.Missing) != 1 || pf.Missing[0] != "videoAsset" {
		t.Fatalf("missing = %v, want [videoAsset]", pf.Missing)
	}
}

func TestVideoAttachCreatesSingleAsset(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	chapter := env.mustCreateChapter(t, course.ID, "Intro")

	updated, err := env.chapters.Update(context.Background(), testOwnerID, course.ID, chapter.ID, map[string]interface{}{
		"video_url": "https://cdn.example.com/v1.mp4",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.VideoURL != "https://cdn.example.com/v1.mp4" {
		t.Errorf("videoUrl = %q", updated.VideoURL)
	}
	if updated.VideoAsset == nil {
		t.Fatal("expected asset record after attach")
	}
	if updated.VideoAsset.ExternalAssetID != "asset-1" {
		t.Errorf("external asset id = %q, want asset-1", updated.VideoAsset.ExternalAssetID)
	}
	if updated.VideoAsset.PlaybackID != "pb-asset-1" {
		t.Errorf("playback id = %q, want pb-asset-1", updated.VideoAsset.PlaybackID)
	}
	if len(env.encoder.deletedIDs) != 0 {
		t.Errorf("no remote delete expected on first attach, got %v", env.encoder.deletedIDs)
	}
}

func TestVideoReplaceSwapsAsset(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	chapter := env.mustCreateChapter(t, course.ID, "Intro")

	ctx := context.Background()
	if _, err := env.chapters.Update(ctx, testOwnerID, course.ID, chapter.ID, map[string]interface{}{
		"video_url": "https://cdn.example.com/v1.mp4",
	}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	updated, err := env.chapters.Update(ctx, testOwnerID, course.ID, chapter.ID, map[string]interface{}{
		"video_url": "https://cdn.example.com/v2.mp4",
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if len(env.encoder.deletedIDs) != 1 || env.encoder.deletedIDs[0] != "asset-1" {
		t.Fatalf("deleted remote assets = %v, want [asset-1]", env.encoder.deletedIDs)
	}
	if updated.VideoAsset == nil || updated.VideoAsset.ExternalAssetID != "asset-2" {
		t.Fatalf("asset after replace = %+v, want external id asset-2", updated.VideoAsset)
	}

	// 章节在任何时刻至多持有一条资产记录
	var count int64
	env.db.Model(&model.VideoAsset{}).Where("chapter_id = ?", chapter.ID).Count(&count)
	if count != 1 {
		t.Fatalf("asset records = %d, want 1", count)
	}
}

func TestVideoReplaceHaltsWhenRemoteDeleteFails(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	chapter := env.mustCreateChapter(t, course.ID, "Intro")

	ctx := context.Background()
	if _, err := env.chapters.Update(ctx, testOwnerID, course.ID, chapter.ID, map[string]interface{}{
		"video_url": "https://cdn.example.com/v1.mp4",
	}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	env.encoder.deleteErr = util.ErrUpstreamAsset
	_, err := env.chapters.Update(ctx, testOwnerID, course.ID, chapter.ID, map[string]interface{}{
		"video_url": "https://cdn.example.com/v2.mp4",
	})
	if !errors.Is(err, util.ErrUpstreamAsset) {
		t.Fatalf("replace error = %v, want ErrUpstreamAsset", err)
	}

	// 旧资产记录保留，等待下次替换重试远端删除
	asset, findErr := env.assets.FindByChapter(chapter.ID)
	if findErr != nil {
		t.Fatalf("find asset: %v", findErr)
	}
	if asset == nil || asset.ExternalAssetID != "asset-1" {
		t.Fatalf("asset after failed replace = %+v, want original asset-1", asset)
	}
	if len(env.encoder.createdInputs) != 1 {
		t.Fatalf("no new asset may be created after delete failure, created = %v", env.encoder.createdInputs)
	}
}

func TestFailedAssetCreateIsCountedAsStale(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	chapter := env.mustCreateChapter(t, course.ID, "Intro")

	env.encoder.createErr = util.ErrUpstreamAsset
	_, err := env.chapters.Update(context.Background(), testOwnerID, course.ID, chapter.ID, map[string]interface{}{
		"video_url": "https://cdn.example.com/v1.mp4",
	})
	if !errors.Is(err, util.ErrUpstreamAsset) {
		t.Fatalf("update error = %v, want ErrUpstreamAsset", err)
	}

	stale, err := env.assets.CountStale()
	if err != nil {
		t.Fatalf("count stale: %v", err)
	}
	if stale != 1 {
		t.Fatalf("stale count = %d, want 1", stale)
	}
}

func TestUnpublishLastChapterDemotesCourse(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	env.mustFillCourse(t, course.ID)
	chapter := env.mustPublishableChapter(t, course.ID, "Intro")

	if _, err := env.courses.Publish(testOwnerID, course.ID); err != nil {
		t.Fatalf("publish course: %v", err)
	}

	if _, err := env.chapters.Unpublish(testOwnerID, course.ID, chapter.ID); err != nil {
		t.Fatalf("unpublish chapter: %v", err)
	}

	got, err := env.courses.Get(testOwnerID, course.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if got.IsPublished {
		t.Fatal("course must be demoted to draft when no published chapters remain")
	}
}

func TestUnpublishKeepsCourseWhilePublishedChaptersRemain(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	env.mustFillCourse(t, course.ID)
	first := env.mustPublishableChapter(t, course.ID, "Intro")
	env.mustPublishableChapter(t, course.ID, "Setup")

	if _, err := env.courses.Publish(testOwnerID, course.ID); err != nil {
		t.Fatalf("publish course: %v", err)
	}

	if _, err := env.chapters.Unpublish(testOwnerID, course.ID, first.ID); err != nil {
		t.Fatalf("unpublish chapter: %v", err)
	}

	got, err := env.courses.Get(testOwnerID, course.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if !got.IsPublished {
		t.Fatal("course must stay published while another published chapter remains")
	}
}

func TestDemotionNeverAutoRepublishes(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	env.mustFillCourse(t, course.ID)
	chapter := env.mustPublishableChapter(t, course.ID, "Intro")

	if _, err := env.courses.Publish(testOwnerID, course.ID); err != nil {
		t.Fatalf("publish course: %v", err)
	}
	if _, err := env.chapters.Unpublish(testOwnerID, course.ID, chapter.ID); err != nil {
		t.Fatalf("unpublish chapter: %v", err)
	}

	// 条件恢复后课程保持 Draft，再发布必须显式
	if _, err := env.chapters.Publish(testOwnerID, course.ID, chapter.ID); err != nil {
		t.Fatalf("republish chapter: %v", err)
	}
	got, err := env.courses.Get(testOwnerID, course.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if got.IsPublished {
		t.Fatal("course must not auto-republish when conditions recover")
	}
}

func TestDeleteChapterCleansAssetAndRecomputes(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	env.mustFillCourse(t, course.ID)
	chapter := env.mustPublishableChapter(t, course.ID, "Intro")

	if _, err := env.courses.Publish(testOwnerID, course.ID); err != nil {
		t.Fatalf("publish course: %v", err)
	}

	deletedID, err := env.chapters.Delete(context.Background(), testOwnerID, course.ID, chapter.ID)
	if err != nil {
		t.Fatalf("delete chapter: %v", err)
	}
	if deletedID != chapter.ID {
		t.Errorf("deleted id = %s, want %s", deletedID, chapter.ID)
	}

	if len(env.encoder.deletedIDs) != 1 {
		t.Fatalf("remote deletes = %v, want exactly one", env.encoder.deletedIDs)
	}

	got, err := env.courses.Get(testOwnerID, course.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if got.IsPublished {
		t.Fatal("deleting the only published chapter must demote the course")
	}
}

func TestDeleteChapterHaltsOnRemoteFailure(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	chapter := env.mustCreateChapter(t, course.ID, "Intro")

	if _, err := env.chapters.Update(context.Background(), testOwnerID, course.ID, chapter.ID, map[string]interface{}{
		"video_url": "https://cdn.example.com/v1.mp4",
	}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	env.encoder.deleteErr = util.ErrUpstreamAsset
	_, err := env.chapters.Delete(context.Background(), testOwnerID, course.ID, chapter.ID)
	if !errors.Is(err, util.ErrUpstreamAsset) {
		t.Fatalf("delete error = %v, want ErrUpstreamAsset", err)
	}

	// 远端删除失败时章节与资产记录都保留
	if _, err := env.chapters.Get(testOwnerID, course.ID, chapter.ID); err != nil {
		t.Fatalf("chapter must survive failed delete: %v", err)
	}
	asset, _ := env.assets.FindByChapter(chapter.ID)
	if asset == nil {
		t.Fatal("asset record must survive failed remote delete")
	}
}

func TestChapterUpdateCannotTogglePublished(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go from scratch")
	chapter := env.mustCreateChapter(t, course.ID, "Intro")

	updated, err := env.chapters.Update(context.Background(), testOwnerID, course.ID, chapter.ID, map[string]interface{}{
		"is_published": true,
		"title":        "Renamed",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsPublished {
		t.Fatal("is_published must not be writable through field update")
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", updated.Title)
	}
}
