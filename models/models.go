package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Password    string `json:"-"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	IsBlocked   bool   `json:"is_blocked"`
	IsAdmin     bool   `json:"is_admin" gorm:"default:false"`
	LastLoginAt time.Time `json:"last_login_at"`
}

type Category struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}

type Product struct {
	gorm.Model
	Name        string   `gorm:"not null" json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	CategoryID  uint     `json:"category_id"`
	Category    Category `json:"category" gorm:"foreignKey:CategoryID"`
	ImageURL    string   `json:"image_url"`
	IsActive    bool     `gorm:"default:true" json:"is_active"`
}

type Cart struct {
	gorm.Model
	UserID    uint    `gorm:"index" json:"user_id"`
	User      User    `gorm:"foreignKey:UserID" json:"-"`
	ProductID uint    `json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int     `json:"quantity"`
}
