package config

import (
	"fmt"

	"github.com/ayele-dev/zemcart/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB initializes the database connection and runs migrations
func InitDB() {
	if AppConfig == nil {
		if _, err := LoadConfig(); err != nil {
			panic(fmt.Sprintf("Failed to load config: %v", err))
		}
	}

	db, err := gorm.Open(postgres.Open(AppConfig.DSN()), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	if err := Migrate(DB); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
}

// Migrate runs the schema migrations on the given connection
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	)
}
