package service

import (
	"fintrack/models"

	"gorm.io/gorm"
)

// SeedDefaultCategories 为新注册用户预置默认分类
// 已存在同名同类型分类时跳过，保证可重复调用
func SeedDefaultCategories(db *gorm.DB, userID uint) error {
	defaults := models.DefaultCategories()

	var existing []models.Category
	if err := db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return err
	}
	seen := make(map[[2]string]bool, len(existing))
	for _, cat := range existing {
		seen[[2]string{cat.Name, cat.Type}] = true
	}

	var cats []models.Category
	for _, d := range defaults {
		if seen[[2]string{d.Name, d.Type}] {
			continue
		}
		cats = append(cats, models.Category{
			UserID: userID,
			Name:   d.Name,
			Type:   d.Type,
			Icon:   d.Icon,
			Color:  d.Color,
		})
	}
	if len(cats) == 0 {
		return nil
	}
	return db.Create(&cats).Error
}
