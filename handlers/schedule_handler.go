package handlers

import (
	"log"
	"time"

	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateScheduleRequest struct {
	ClassID     string `json:"class_id" validate:"required,uuid"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	MaxStudents *int   `json:"max_students,omitempty" validate:"omitempty,min=1"`
}

// GetSchedules lists upcoming schedules, filterable by class or academy.
func GetSchedules(c *fiber.Ctx) error {
	query := database.DB.Preload("Class").Preload("Class.Academy").
		Where("is_canceled = ?", false)

	if classID := c.Query("class_id"); classID != "" {
		id, err := uuid.Parse(classID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
		}
		query = query.Where("class_id = ?", id)
	}
	if academyID := c.Query("academy_id"); academyID != "" {
		id, err := uuid.Parse(academyID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid academy id"})
		}
		query = query.Joins("JOIN classes ON classes.id = schedules.class_id").
			Where("classes.academy_id = ?", id)
	}
	if c.Query("upcoming") != "false" {
		query = query.Where("start_time > ?", time.Now())
	}

	var schedules []models.Schedule
	if err := query.Order("start_time ASC").Find(&schedules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedules"})
	}

	return c.JSON(fiber.Map{"data": schedules})
}

// CreateSchedule adds a session and immediately backfills bookings for
// period-ticket holders whose window covers it.
func CreateSchedule(c *fiber.Ctx) error {
	var req CreateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	classID, _ := uuid.Parse(req.ClassID)
	var class models.Class
	if err := database.DB.First(&class, "id = ?", classID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_time, expected RFC3339"})
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_time, expected RFC3339"})
	}
	if !endTime.After(startTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be after start_time"})
	}

	schedule := models.Schedule{
		ClassID:   classID,
		StartTime: startTime,
		EndTime:   endTime,
	}
	if req.MaxStudents != nil {
		schedule.MaxStudents = *req.MaxStudents
	}
	if err := database.DB.Create(&schedule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create schedule"})
	}

	backfilled, err := services.BackfillNewSchedule(database.DB, schedule.ID, schedule.ClassID, schedule.StartTime)
	if err != nil {
		log.Printf("Backfill failed for schedule %s: %v", schedule.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Schedule created successfully.",
		"schedule":   schedule,
		"backfilled": backfilled,
	})
}

type CreateSchedulesBatchRequest struct {
	Schedules []CreateScheduleRequest `json:"schedules" validate:"required,min=1,dive"`
}

// CreateSchedulesBatch creates a week's worth of sessions in one call and
// backfills them all.
func CreateSchedulesBatch(c *fiber.Ctx) error {
	var req CreateSchedulesBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	created := make([]models.Schedule, 0, len(req.Schedules))
	for _, item := range req.Schedules {
		classID, err := uuid.Parse(item.ClassID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
		}
		startTime, err := time.Parse(time.RFC3339, item.StartTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_time, expected RFC3339"})
		}
		endTime, err := time.Parse(time.RFC3339, item.EndTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_time, expected RFC3339"})
		}

		schedule := models.Schedule{ClassID: classID, StartTime: startTime, EndTime: endTime}
		if item.MaxStudents != nil {
			schedule.MaxStudents = *item.MaxStudents
		}
		if err := database.DB.Create(&schedule).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create schedules"})
		}
		created = append(created, schedule)
	}

	backfilled := services.BackfillNewSchedules(database.DB, created)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Schedules created successfully.",
		"schedules":  created,
		"backfilled": backfilled,
	})
}

// CancelSchedule marks a session canceled. Existing bookings stay in place
// for staff to handle individually; the counter is recomputed anyway.
func CancelSchedule(c *fiber.Ctx) error {
	scheduleID, err := uuid.Parse(c.Params("scheduleId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule id"})
	}

	var schedule models.Schedule
	if err := database.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
	}
	if schedule.IsCanceled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Schedule is already canceled"})
	}

	if err := database.DB.Model(&schedule).Update("is_canceled", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel schedule"})
	}

	if _, err := services.RecountScheduleStudents(database.DB, scheduleID); err != nil {
		log.Printf("Failed to recount students for schedule %s: %v", scheduleID, err)
	}

	return c.JSON(fiber.Map{"message": "Schedule canceled."})
}
