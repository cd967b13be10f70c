package database

import (
	"fmt"
	"log"
	"os"
	"skillhire/models"
	courseModels "skillhire/models/course"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	RunMigrations(db)
	SeedConfig(db)

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Payment{},
		&models.CourseAccess{},
		&models.QuestionnaireAccess{},
		&models.CvUnlock{},
		&models.Subscription{},
		&models.PricingConfig{},
		&models.SystemConfig{},
		&models.AuditLog{},
		&models.SurveyToken{},
		&models.InternshipApplication{},
		&models.Questionnaire{},
		&models.QuestionnaireQuestion{},
		&models.Assessment{},
		&models.Certificate{},
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.ModuleQuestion{},
		&courseModels.Progress{},
		&courseModels.ModuleProgress{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}

// SeedConfig creates the pricing and policy singletons when absent so every
// pricing or capacity decision has a row to read.
func SeedConfig(db *gorm.DB) {
	var pricing models.PricingConfig
	if err := db.First(&pricing, models.ConfigRowID).Error; err != nil {
		pricing = models.PricingConfig{
			CourseFee:               4900,
			JoiningFee:              1900,
			RetakeFee:               900,
			ReactivationFee:         900,
			EmployerSubscriptionFee: 9900,
			CvUnlockPricing:         []byte(`{"1-star":100,"2-star":200,"3-star":300,"4-star":400,"5-star":500}`),
			Currency:                "GBP",
		}
		pricing.ID = models.ConfigRowID
		if err := db.Create(&pricing).Error; err != nil {
			log.Printf("Failed to seed pricing config: %v", err)
		}
	}

	var system models.SystemConfig
	if err := db.First(&system, models.ConfigRowID).Error; err != nil {
		system = models.SystemConfig{
			InternshipProgramEnabled: true,
			InternshipSlots:          10,
			SurveyTimeoutHours:       48,
		}
		system.ID = models.ConfigRowID
		if err := db.Create(&system).Error; err != nil {
			log.Printf("Failed to seed system config: %v", err)
		}
	}
}
