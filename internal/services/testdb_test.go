package services

import (
	"testing"

	"github.com/worknote/backend/internal/models"
	"github.com/worknote/backend/internal/timeperiod"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.WorkItem{},
		&models.Appeal{},
		&models.Trouble{},
		&models.Client{},
		&models.Project{},
		&models.Mission{},
		&models.AppealCategory{},
		&models.TroubleCategory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// seedReferences creates one client > project > mission chain plus one
// category of each kind, and returns the mission and category IDs.
func seedReferences(t *testing.T, db *gorm.DB) (missionID, appealCatID, troubleCatID uint) {
	t.Helper()

	client := models.Client{Name: "Acme Corp", Keywords: "acme"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	project := models.Project{ClientID: client.ID, Name: "Billing Platform", Keywords: "billing"}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	mission := models.Mission{ProjectID: project.ID, Name: "Invoice API", Keywords: "invoice"}
	if err := db.Create(&mission).Error; err != nil {
		t.Fatalf("seed mission: %v", err)
	}

	appealCat := models.AppealCategory{Name: "Achievement"}
	if err := db.Create(&appealCat).Error; err != nil {
		t.Fatalf("seed appeal category: %v", err)
	}
	troubleCat := models.TroubleCategory{Name: "Blocker"}
	if err := db.Create(&troubleCat).Error; err != nil {
		t.Fatalf("seed trouble category: %v", err)
	}

	return mission.ID, appealCat.ID, troubleCat.ID
}

func seedUser(t *testing.T, db *gorm.DB, username string) uint {
	t.Helper()
	user := models.User{Username: username, Role: "member", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

func newTestReportService(t *testing.T, db *gorm.DB) *ReportService {
	t.Helper()
	cal, err := timeperiod.NewCalendar("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load calendar: %v", err)
	}
	return NewReportService(db, cal)
}
