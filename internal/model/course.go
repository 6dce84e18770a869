package model

// Course 一门课程，归属唯一的创建者
// swagger:model Course
type Course struct {
	UUIDBase
	OwnerID     uint    `gorm:"index;not null" json:"ownerId"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	ImageURL    string  `gorm:"size:512" json:"imageUrl"`
	Price       float64 `gorm:"default:0" json:"price"`
	CategoryID  string  `gorm:"size:36;index" json:"categoryId"`
	IsPublished bool    `gorm:"default:false;index" json:"isPublished"`

	Category    *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Chapters    []Chapter    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"chapters,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// MissingPublishFields 发布前置条件缺失的字段列表，为空表示满足
// 至少一个已发布章节的条件由 service 层结合章节统计判断
func (c *Course) MissingPublishFields() []string {
	var missing []string
	if c.Title == "" {
		missing = append(missing, "title")
	}
	if c.Description == "" {
		missing = append(missing, "description")
	}
	if c.ImageURL == "" {
		missing = append(missing, "imageUrl")
	}
	if c.CategoryID == "" {
		missing = append(missing, "categoryId")
	}
	return missing
}
