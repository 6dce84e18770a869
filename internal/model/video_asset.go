package model

// VideoAsset 外部编码服务返回的资产句柄，一个章节至多一条
// 章节的 VideoURL 变化时旧资产必须先删（远端+本库），否则即为脏数据
// swagger:model VideoAsset
type VideoAsset struct {
	UUIDBase
	ChapterID       string `gorm:"size:36;uniqueIndex;not null" json:"chapterId"`
	ExternalAssetID string `gorm:"size:255;not null" json:"externalAssetId"`
	PlaybackID      string `gorm:"size:255" json:"playbackId"`
}

func (VideoAsset) TableName() string {
	return "video_assets"
}
