package entities

import "time"

// AppConfig is a persisted dashboard setting.
type AppConfig struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	Value     string    `gorm:"type:text;not null"`
	IsSecret  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (AppConfig) TableName() string {
	return "app_config"
}

// User is a persisted dashboard account.
type User struct {
	ID           string    `gorm:"type:varchar(40);primaryKey"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Email        string    `gorm:"type:varchar(320);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(32);not null;default:admin"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
