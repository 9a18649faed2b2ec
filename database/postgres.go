package database

import (
	"log"
	"tripmate-backend/config"
	"tripmate-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() {
	var err error
	DB, err = gorm.Open(postgres.Open(config.AppConfig.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("✅ Database connected successfully")

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("✅ Database migrated successfully")
}

// Migrate runs auto-migration for all models. Split out from Connect so
// tests can run it against their own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Trip{},
		&models.ItineraryItem{},
		&models.TravelGroup{},
		&models.GroupMember{},
		&models.GroupInvitation{},
		&models.SharedExpense{},
		&models.ExpenseParticipant{},
		&models.Settlement{},
	)
}
