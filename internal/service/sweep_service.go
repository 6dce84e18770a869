package service

import (
	"courselab_backend/internal/repository"
	"courselab_backend/pkg/logger"
	"courselab_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// SweepService 巡检处于不一致窗口的章节：videoUrl 已写入但资产记录缺失
// （视频替换协议在创建资产一步失败后留下的状态）。
// 只观测：计数进指标并留日志，修复始终是作者的显式重传动作。
type SweepService struct {
	AssetRepo *repository.VideoAssetRepository
}

func NewSweepService(assetRepo *repository.VideoAssetRepository) *SweepService {
	return &SweepService{AssetRepo: assetRepo}
}

func (s *SweepService) SweepStaleAssets() error {
	count, err := s.AssetRepo.CountStale()
	if err != nil {
		return err
	}

	monitoring.StaleVideoAssets.Set(float64(count))
	if count > 0 {
		logger.Log.Warn("chapters pending video asset detected",
			zap.Int64("count", count))
	}
	return nil
}
