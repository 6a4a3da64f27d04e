package models

import (
	"time"

	"gorm.io/gorm"
)

// 收支类型，分类与交易共用同一套取值
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// IsValidType 校验收支类型取值
func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Category 收支分类模型，按用户隔离
// 唯一性约束 (user_id, name, type) 在应用层校验，避免软删除记录占用数据库唯一索引
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:100;not null"`
	Type      string         `json:"type" gorm:"size:10;not null;index"` // income / expense
	Color     string         `json:"color" gorm:"size:7;default:#6366f1"`
	Icon      string         `json:"icon" gorm:"size:50;default:💰"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// DefaultCategory 新用户的预置分类
type DefaultCategory struct {
	Name  string
	Type  string
	Icon  string
	Color string
}

// DefaultCategories 返回新用户注册时预置的分类（4 个收入 + 8 个支出）
func DefaultCategories() []DefaultCategory {
	return []DefaultCategory{
		// 收入分类
		{Name: "Salary", Type: TypeIncome, Icon: "💰", Color: "#10b981"},
		{Name: "Freelance", Type: TypeIncome, Icon: "💼", Color: "#059669"},
		{Name: "Investment", Type: TypeIncome, Icon: "📈", Color: "#34d399"},
		{Name: "Gift", Type: TypeIncome, Icon: "🎁", Color: "#6ee7b7"},
		// 支出分类
		{Name: "Food", Type: TypeExpense, Icon: "🍔", Color: "#ef4444"},
		{Name: "Transport", Type: TypeExpense, Icon: "🚗", Color: "#f59e0b"},
		{Name: "Housing", Type: TypeExpense, Icon: "🏠", Color: "#8b5cf6"},
		{Name: "Entertainment", Type: TypeExpense, Icon: "🎬", Color: "#ec4899"},
		{Name: "Shopping", Type: TypeExpense, Icon: "🛒", Color: "#f43f5e"},
		{Name: "Healthcare", Type: TypeExpense, Icon: "💊", Color: "#06b6d4"},
		{Name: "Education", Type: TypeExpense, Icon: "🎓", Color: "#3b82f6"},
		{Name: "Utilities", Type: TypeExpense, Icon: "⚡", Color: "#fbbf24"},
	}
}
