package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Academy{},
		&models.AcademyStudent{},
		&models.Branch{},
		&models.Hall{},
		&models.Instructor{},
		&models.Class{},
		&models.TicketClass{},
		&models.Ticket{},
		&models.Discount{},
		&models.UserTicket{},
		&models.Schedule{},
		&models.Booking{},
		&models.RevenueTransaction{},
		&models.BankTransferOrder{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func intPtr(n int) *int { return &n }

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{FullName: name, Email: name + "@example.com", Password: "x", Role: "student"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func createAcademy(t *testing.T, db *gorm.DB, name string) *models.Academy {
	t.Helper()
	academy := models.Academy{Name: name}
	if err := db.Create(&academy).Error; err != nil {
		t.Fatalf("failed to create academy: %v", err)
	}
	return &academy
}

func createClass(t *testing.T, db *gorm.DB, academyID uuid.UUID, classType string) *models.Class {
	t.Helper()
	class := models.Class{AcademyID: academyID, Title: "Open Class", ClassType: classType}
	if err := db.Create(&class).Error; err != nil {
		t.Fatalf("failed to create class: %v", err)
	}
	return &class
}

func createSchedule(t *testing.T, db *gorm.DB, classID uuid.UUID, start time.Time, maxStudents int) *models.Schedule {
	t.Helper()
	schedule := models.Schedule{
		ClassID:     classID,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		MaxStudents: maxStudents,
	}
	if err := db.Create(&schedule).Error; err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}
	return &schedule
}

func createCountTicket(t *testing.T, db *gorm.DB, academyID uuid.UUID, total int) *models.Ticket {
	t.Helper()
	ticket := models.Ticket{
		AcademyID:  &academyID,
		Name:       "Count Pass",
		TicketType: models.TicketTypeCount,
		TotalCount: intPtr(total),
		ValidDays:  intPtr(90),
		Price:      100000,
	}
	if err := db.Create(&ticket).Error; err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}
	return &ticket
}

func createPeriodTicket(t *testing.T, db *gorm.DB, academyID uuid.UUID, general bool, validDays int) *models.Ticket {
	t.Helper()
	ticket := models.Ticket{
		AcademyID:  &academyID,
		Name:       "Period Pass",
		TicketType: models.TicketTypePeriod,
		ValidDays:  intPtr(validDays),
		Price:      300000,
		IsGeneral:  general,
	}
	if err := db.Create(&ticket).Error; err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}
	return &ticket
}

func linkTicketToClass(t *testing.T, db *gorm.DB, ticketID, classID uuid.UUID) {
	t.Helper()
	if err := db.Create(&models.TicketClass{TicketID: ticketID, ClassID: classID}).Error; err != nil {
		t.Fatalf("failed to link ticket to class: %v", err)
	}
}

func issueTicket(t *testing.T, db *gorm.DB, userID uuid.UUID, ticket *models.Ticket) *models.UserTicket {
	t.Helper()
	ut, err := IssueUserTicket(db, userID, ticket, time.Now(), nil)
	if err != nil {
		t.Fatalf("failed to issue ticket: %v", err)
	}
	return ut
}

func reloadUserTicket(t *testing.T, db *gorm.DB, id uuid.UUID) *models.UserTicket {
	t.Helper()
	var ut models.UserTicket
	if err := db.First(&ut, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload user ticket: %v", err)
	}
	return &ut
}

func reloadSchedule(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Schedule {
	t.Helper()
	var s models.Schedule
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload schedule: %v", err)
	}
	return &s
}
