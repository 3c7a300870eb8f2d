package jobs

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/services"
	"github.com/tkaykim/moveit-backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupJobDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(&models.Ticket{}, &models.UserTicket{}, &models.Schedule{}, &models.Booking{})
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func seedCountTicket(t *testing.T, db *gorm.DB, expiryDate time.Time) *models.UserTicket {
	t.Helper()

	count := 5
	ticket := models.Ticket{
		Name:       "Count Pass",
		TicketType: models.TicketTypeCount,
		TotalCount: &count,
		Price:      100000,
	}
	if err := db.Create(&ticket).Error; err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}

	remaining := count
	ut := models.UserTicket{
		UserID:         uuid.New(),
		TicketID:       ticket.ID,
		RemainingCount: &remaining,
		StartDate:      utils.DateOnly(expiryDate.AddDate(0, -1, 0)),
		ExpiryDate:     expiryDate,
		Status:         models.UserTicketActive,
	}
	if err := db.Create(&ut).Error; err != nil {
		t.Fatalf("failed to create user ticket: %v", err)
	}
	return &ut
}

func TestExpireUserTicketsKeepsExpiryDayValid(t *testing.T) {
	db := setupJobDB(t)

	// Still inside the inclusive window on its last day.
	expiringToday := seedCountTicket(t, db, utils.DateOnly(time.Now()))
	expiredYesterday := seedCountTicket(t, db, utils.DateOnly(time.Now()).AddDate(0, 0, -1))

	ExpireUserTickets()

	var today models.UserTicket
	if err := db.First(&today, "id = ?", expiringToday.ID).Error; err != nil {
		t.Fatalf("failed to reload ticket: %v", err)
	}
	if today.Status != models.UserTicketActive {
		t.Fatalf("expected ticket expiring today to stay ACTIVE, got %s", today.Status)
	}
	if err := services.ConsumeUserTicket(db, today.ID, 1); err != nil {
		t.Fatalf("expected ticket expiring today to remain consumable, got %v", err)
	}

	var past models.UserTicket
	if err := db.First(&past, "id = ?", expiredYesterday.ID).Error; err != nil {
		t.Fatalf("failed to reload ticket: %v", err)
	}
	if past.Status != models.UserTicketExpired {
		t.Fatalf("expected ticket expired yesterday to be EXPIRED, got %s", past.Status)
	}
}
