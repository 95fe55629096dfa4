package model

import (
	"time"
)

// 默认值与字段长度。
const (
	DefaultListName  = "New List"
	DefaultListColor = "#268AFF"
	DefaultTaskTitle = "New Task"

	MaxListNameLen  = 64
	MaxListColorLen = 7
	MaxTaskTitleLen = 128
	MaxStatusLen    = 32
)

// TaskStatus 任务状态。
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "In progress"
	StatusFailed     TaskStatus = "Failed"
	StatusDone       TaskStatus = "Done"
)

// StatusInfo 状态及其展示颜色。
type StatusInfo struct {
	Status TaskStatus `json:"status"`
	Color  string     `json:"color"`
}

// Statuses 返回全部任务状态，顺序固定。
func Statuses() []StatusInfo {
	return []StatusInfo{
		{Status: StatusTodo, Color: "#268AFF"},
		{Status: StatusInProgress, Color: "#EC8C32"},
		{Status: StatusFailed, Color: "#DB5F40"},
		{Status: StatusDone, Color: "#9EC545"},
	}
}

// Valid 判断状态是否属于枚举。
func (s TaskStatus) Valid() bool {
	for _, info := range Statuses() {
		if info.Status == s {
			return true
		}
	}
	return false
}

// User 表示系统用户（仅多用户模式）。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt 哈希
	CreatedAt time.Time `json:"created_at"`

	Lists []List `gorm:"foreignKey:UserID" json:"-"`
}

// List 表示一个任务清单。
//
// UserID 为空表示单用户模式下的全局清单。
type List struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID *uint  `gorm:"index" json:"user_id,omitempty"`
	Name   string `gorm:"type:varchar(64);default:'New List'" json:"name"`
	Color  string `gorm:"type:varchar(7);default:'#268AFF'" json:"color"`

	Tasks []Task `gorm:"foreignKey:ListID;constraint:OnDelete:RESTRICT" json:"tasks"`
}

// OwnedBy 判断清单是否属于指定用户。
func (l *List) OwnedBy(userID uint) bool {
	return l.UserID != nil && *l.UserID == userID
}

// Task 表示清单中的一个任务。
type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ListID  uint       `gorm:"not null;index" json:"list_id"`
	Title   string     `gorm:"type:varchar(128);not null" json:"title"`
	Content string     `gorm:"type:text" json:"content"`
	Status  TaskStatus `gorm:"type:varchar(32);default:'TODO'" json:"status"`
}

// NewList 创建带默认值的清单，ownerID 为空表示全局清单。
func NewList(ownerID *uint) *List {
	return &List{
		UserID: ownerID,
		Name:   DefaultListName,
		Color:  DefaultListColor,
		Tasks:  []Task{},
	}
}

// NewTask 创建带默认值的任务。
func NewTask(listID uint) *Task {
	return &Task{
		ListID:  listID,
		Title:   DefaultTaskTitle,
		Content: "",
		Status:  StatusTodo,
	}
}
