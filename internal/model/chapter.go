package model

// Chapter 课程章节，Position 在同一课程内唯一，从 0 开始
// swagger:model Chapter
type Chapter struct {
	UUIDBase
	CourseID    string  `gorm:"size:36;index;not null" json:"courseId"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	VideoURL    string  `gorm:"size:512" json:"videoUrl"`
	Duration    float64 `gorm:"default:0" json:"duration"`
	Position    int     `gorm:"not null;default:0" json:"position"`
	IsPublished bool    `gorm:"default:false" json:"isPublished"`
	IsFree      bool    `gorm:"default:false" json:"isFree"`

	VideoAsset *VideoAsset `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"videoAsset,omitempty"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// MissingPublishFields 章节发布缺失的字段，VideoAsset 的存在性由 service 层判断
func (ch *Chapter) MissingPublishFields() []string {
	var missing []string
	if ch.Title == "" {
		missing = append(missing, "title")
	}
	if ch.Description == "" {
		missing = append(missing, "description")
	}
	if ch.VideoURL == "" {
		missing = append(missing, "videoUrl")
	}
	return missing
}
