package model

// Attachment 课程附件，Name 在创建时取 URL 的最后一段
// swagger:model Attachment
type Attachment struct {
	UUIDBase
	CourseID string `gorm:"size:36;index;not null" json:"courseId"`
	URL      string `gorm:"size:512;not null" json:"url"`
	Name     string `gorm:"size:255;not null" json:"name"`
}

func (Attachment) TableName() string {
	return "attachments"
}
