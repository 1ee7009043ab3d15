package models

import (
	"time"

	"gorm.io/datatypes"
)

type Task struct {
	BaseModel
	Title              string     `gorm:"not null" json:"title"`
	Description        string     `gorm:"not null" json:"description"`
	CategoryID         int64      `gorm:"not null" json:"categoryId"`
	SubcategoryID      *int64     `json:"subCategoryId"`
	ClientID           int64      `gorm:"not null;index" json:"clientId"`
	FreelancerID       *int64     `json:"freelancerId"`
	Price              int64      `gorm:"not null" json:"price"`
	Status             TaskStatus `gorm:"type:task_status;not null;default:open" json:"status"`
	NotifyAboutReplies bool       `gorm:"not null;default:false" json:"notifyAboutReplies"`
	Files              []TaskFile `gorm:"foreignKey:TaskID" json:"files"`
}

// TaskFile - вложение задачи (объект во внешнем хранилище)
type TaskFile struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID   int64  `gorm:"not null" json:"-"`
	FileID   string `gorm:"not null" json:"fileId"`
	FileURL  string `gorm:"not null" json:"fileUrl"`
	FileName string `gorm:"not null" json:"fileName"`
}

type TaskReply struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Description  string    `gorm:"not null" json:"description"`
	FreelancerID int64     `gorm:"not null" json:"freelancerId"`
	TaskID       int64     `gorm:"not null" json:"taskId"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"createdAt"`
}

type TaskView struct {
	TaskID    int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// TaskListItem - строка выборки задач вместе с категориями, автором и файлами.
// TotalCount заполняется оконной функцией и одинаков во всех строках страницы.
type TaskListItem struct {
	ID                 int64                         `json:"id"`
	Title              string                        `json:"title"`
	Description        string                        `json:"description"`
	Price              int64                         `json:"price"`
	Status             TaskStatus                    `json:"status"`
	CategoryID         int64                         `json:"categoryId"`
	SubcategoryID      *int64                        `json:"subCategoryId"`
	ClientID           int64                         `json:"clientId"`
	FreelancerID       *int64                        `json:"freelancerId"`
	NotifyAboutReplies bool                          `json:"notifyAboutReplies"`
	Category           string                        `json:"category"`
	Subcategory        *string                       `json:"subCategory"`
	Creator            string                        `json:"creator"`
	Files              datatypes.JSONSlice[TaskFile] `json:"files"`
	CreatedAt          time.Time                     `json:"createdAt"`
	UpdatedAt          time.Time                     `json:"updatedAt"`
	TotalCount         int64                         `json:"-"`
}

// TaskReplyItem - отклик вместе с именем фрилансера
type TaskReplyItem struct {
	ID           int64     `json:"id"`
	Description  string    `json:"description"`
	TaskID       int64     `json:"taskId"`
	FreelancerID int64     `json:"freelancerId"`
	Freelancer   string    `json:"freelancer"`
	Avatar       *string   `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
	TotalCount   int64     `json:"-"`
}
