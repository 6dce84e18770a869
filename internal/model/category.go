package model

// Category 课程分类，初始数据由 pkg/database 播种
// swagger:model Category
type Category struct {
	UUIDBase
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}
