package models

import (
	"time"

	"gorm.io/gorm"
)

// 预算周期
const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// IsValidPeriod 校验预算周期取值
func IsValidPeriod(p string) bool {
	return p == PeriodMonthly || p == PeriodYearly
}

// Budget 预算模型：对某个支出分类在 [start_date, end_date] 内设定的花费上限
// period 仅为展示标签，实际花费统计只看显式的起止日期
// 唯一性约束 (user_id, category_id, start_date, end_date) 在应用层校验
type Budget struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	CategoryID uint           `json:"category" gorm:"index;not null"`
	Amount     float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Period     string         `json:"period" gorm:"size:20;default:monthly"` // monthly / yearly
	StartDate  time.Time      `json:"start_date" gorm:"type:date;not null"`
	EndDate    time.Time      `json:"end_date" gorm:"type:date;not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	User       User           `json:"-" gorm:"foreignKey:UserID"`
	Category   Category       `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}
