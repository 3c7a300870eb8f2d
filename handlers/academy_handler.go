package handlers

import (
	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateAcademyRequest struct {
	Name    string  `json:"name" validate:"required"`
	NameEN  *string `json:"name_en,omitempty"`
	Address *string `json:"address,omitempty"`
	LogoURL *string `json:"logo_url,omitempty"`
}

func GetAcademies(c *fiber.Ctx) error {
	var academies []models.Academy
	if err := database.DB.Order("name ASC").Find(&academies).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch academies"})
	}
	return c.JSON(fiber.Map{"data": academies})
}

func GetAcademy(c *fiber.Ctx) error {
	academyID, err := uuid.Parse(c.Params("academyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid academy id"})
	}

	var academy models.Academy
	if err := database.DB.First(&academy, "id = ?", academyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Academy not found"})
	}

	var branches []models.Branch
	database.DB.Where("academy_id = ?", academyID).Find(&branches)
	var instructors []models.Instructor
	database.DB.Where("academy_id = ?", academyID).Find(&instructors)

	return c.JSON(fiber.Map{
		"academy":     academy,
		"branches":    branches,
		"instructors": instructors,
	})
}

func CreateAcademy(c *fiber.Ctx) error {
	var req CreateAcademyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	academy := models.Academy{
		Name:    req.Name,
		NameEN:  req.NameEN,
		Address: req.Address,
		LogoURL: req.LogoURL,
	}
	if err := database.DB.Create(&academy).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create academy"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Academy created successfully.",
		"academy": academy,
	})
}

type CreateBranchRequest struct {
	Name    string  `json:"name" validate:"required"`
	Address *string `json:"address,omitempty"`
}

func CreateBranch(c *fiber.Ctx) error {
	academyID, err := uuid.Parse(c.Params("academyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid academy id"})
	}

	var req CreateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	branch := models.Branch{AcademyID: academyID, Name: req.Name, Address: req.Address}
	if err := database.DB.Create(&branch).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create branch"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Branch created successfully.",
		"branch":  branch,
	})
}

type CreateHallRequest struct {
	BranchID string `json:"branch_id" validate:"required,uuid"`
	Name     string `json:"name" validate:"required"`
	Capacity *int   `json:"capacity,omitempty" validate:"omitempty,min=1"`
}

func CreateHall(c *fiber.Ctx) error {
	var req CreateHallRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	branchID, _ := uuid.Parse(req.BranchID)
	var branch models.Branch
	if err := database.DB.First(&branch, "id = ?", branchID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Branch not found"})
	}

	hall := models.Hall{BranchID: branchID, Name: req.Name, Capacity: req.Capacity}
	if err := database.DB.Create(&hall).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create hall"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Hall created successfully.",
		"hall":    hall,
	})
}

type CreateInstructorRequest struct {
	Name   string  `json:"name" validate:"required"`
	Bio    *string `json:"bio,omitempty"`
	UserID *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
}

func CreateInstructor(c *fiber.Ctx) error {
	academyID, err := uuid.Parse(c.Params("academyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid academy id"})
	}

	var req CreateInstructorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	instructor := models.Instructor{AcademyID: academyID, Name: req.Name, Bio: req.Bio}
	if req.UserID != nil {
		userID, _ := uuid.Parse(*req.UserID)
		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		instructor.UserID = &userID
	}

	if err := database.DB.Create(&instructor).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create instructor"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Instructor created successfully.",
		"instructor": instructor,
	})
}

type CreateClassRequest struct {
	Title        string  `json:"title" validate:"required"`
	ClassType    string  `json:"class_type" validate:"required,oneof=regular popup workshop"`
	InstructorID *string `json:"instructor_id,omitempty" validate:"omitempty,uuid"`
	HallID       *string `json:"hall_id,omitempty" validate:"omitempty,uuid"`
	Description  *string `json:"description,omitempty"`
}

func GetClasses(c *fiber.Ctx) error {
	query := database.DB.Preload("Academy")
	if academyID := c.Query("academy_id"); academyID != "" {
		id, err := uuid.Parse(academyID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid academy id"})
		}
		query = query.Where("academy_id = ?", id)
	}

	var classes []models.Class
	if err := query.Order("created_at DESC").Find(&classes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch classes"})
	}

	return c.JSON(fiber.Map{"data": classes})
}

func CreateClass(c *fiber.Ctx) error {
	academyID, err := uuid.Parse(c.Params("academyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid academy id"})
	}

	var req CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	class := models.Class{
		AcademyID:   academyID,
		Title:       req.Title,
		ClassType:   req.ClassType,
		Description: req.Description,
	}
	if req.InstructorID != nil {
		id, _ := uuid.Parse(*req.InstructorID)
		class.InstructorID = &id
	}
	if req.HallID != nil {
		id, _ := uuid.Parse(*req.HallID)
		class.HallID = &id
	}

	if err := database.DB.Create(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create class"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Class created successfully.",
		"class":   class,
	})
}

// GetAcademyStudents lists an academy's registered learners for staff.
func GetAcademyStudents(c *fiber.Ctx) error {
	academyID, err := uuid.Parse(c.Params("academyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid academy id"})
	}

	var students []models.User
	err = database.DB.
		Joins("JOIN academy_students ON academy_students.user_id = users.id").
		Where("academy_students.academy_id = ?", academyID).
		Order("users.full_name ASC").
		Find(&students).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}

	responses := make([]UserResponse, 0, len(students))
	for _, user := range students {
		responses = append(responses, UserResponse{
			ID:        user.ID.String(),
			FullName:  user.FullName,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"data": responses})
}
