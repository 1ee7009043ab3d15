package models

type Category struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	ParentID *int64 `json:"parentId"`
}

// CategoryTree - корневая категория с подкатегориями
type CategoryTree struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Subcategories []Category `json:"subcategories"`
}

