package service

import (
	"context"
	"courselab_backend/internal/config"
	"courselab_backend/internal/util"
	"courselab_backend/pkg/logger"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentService 媒体上传：课程封面、附件文件、章节源视频。
// 产出的 URL 由前端提交回课程/章节编辑接口，视频 URL 再触发编码流程。
type ContentService struct {
	StorageService *StorageService
	Cfg            *config.Config
}

func NewContentService(storageService *StorageService, cfg *config.Config) *ContentService {
	return &ContentService{
		StorageService: storageService,
		Cfg:            cfg,
	}
}

// UploadImage 课程封面图
func (s *ContentService) UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 深度验证 MIME 类型
	if _, err := util.ValidateMimeType(src, []string{util.MimeImage}); err != nil {
		return "", fmt.Errorf("非法的文件内容: %v", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	ext := filepath.Ext(file.Filename)
	filename := "images/" + time.Now().Format("20060102150405") + "_" + util.GenerateRandomString(6) + ext

	return s.StorageService.Upload(ctx, filename, src, file.Size, file.Header.Get("Content-Type"))
}

// UploadAttachment 课程附件，保留原始文件名便于派生附件展示名
func (s *ContentService) UploadAttachment(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	allowedTypes := []string{util.MimePDF, util.MimeImage, util.MimeVideo, "text/plain",
		"application/msword", "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/zip"}
	if _, err := util.ValidateMimeType(src, allowedTypes); err != nil {
		return "", fmt.Errorf("非法的文件内容: %v", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	filename := "attachments/" + time.Now().Format("20060102150405") + "_" + util.GenerateRandomString(6) +
		"/" + strings.ReplaceAll(file.Filename, " ", "-")

	return s.StorageService.Upload(ctx, filename, src, file.Size, file.Header.Get("Content-Type"))
}

// UploadVideo 章节源视频：临时落盘探测时长后再上传，
// 返回的 URL 提交到章节编辑接口时触发外部编码
func (s *ContentService) UploadVideo(ctx context.Context, file *multipart.FileHeader) (string, float64, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	isValidType := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			isValidType = true
			break
		}
	}
	if !isValidType {
		return "", 0, util.ErrInvalidVideoExt
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, err
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, []string{util.MimeVideo, util.MimeOctetStream}); err != nil {
		return "", 0, fmt.Errorf("非法的文件内容，仅允许视频格式: %v", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	tempDir := filepath.Join(s.Cfg.Storage.LocalPath, "temp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", 0, err
	}

	videoPath := filepath.Join(tempDir, fmt.Sprintf("source_%d%s", time.Now().UnixNano(), ext))
	defer os.Remove(videoPath)

	dst, err := os.Create(videoPath)
	if err != nil {
		return "", 0, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", 0, err
	}
	dst.Close()

	// 探测时长，失败不阻断上传
	var duration float64
	if info, err := util.GetVideoInfo(videoPath); err == nil {
		duration = info.Duration
	} else {
		logger.Log.Warn("视频时长探测失败", zap.String("filename", file.Filename), zap.Error(err))
	}

	videoFilename := "videos/" + time.Now().Format("20060102150405") + "-" +
		strings.ReplaceAll(file.Filename, " ", "-")

	url, err := s.StorageService.UploadFile(ctx, videoFilename, videoPath, file.Header.Get("Content-Type"))
	if err != nil {
		return "", 0, err
	}

	return url, duration, nil
}
