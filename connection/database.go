package connection

import (
	"fmt"
	"os"

	"sectorcheck/model"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DBConnection opens the MySQL database from env configuration and migrates
// the schema.
func DBConnection() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not loaded, fallback to OS env vars")
	}

	host := envOr("DB_HOST", "127.0.0.1")
	port := envOr("DB_PORT", "3306")
	user := envOr("DB_USER", "sectorcheck")
	password := os.Getenv("DB_PASSWORD")
	name := envOr("DB_NAME", "sectorcheck")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, name)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Sector{},
		&model.LeaderSector{},
		&model.ChecklistTemplate{},
		&model.ChecklistItem{},
		&model.ChecklistInstance{},
		&model.ChecklistItemResponse{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
