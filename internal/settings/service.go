package settings

import (
	"errors"
	"strings"
	"time"

	"attendance-backend/internal/database"
	"attendance-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrDuplicateName    = errors.New("an entry with this name already exists")
	ErrDefaultProtected = errors.New("default entries cannot be deleted")
	ErrNotFound         = errors.New("entry not found")
	ErrVersionConflict  = errors.New("settings were modified by someone else, reload and retry")
)

const singletonID = 1

// UpdatePatch carries a partial settings update. Nil fields keep their current
// value, so a patch that only touches notification flags can never drop
// company or policy data. Version must match the stored row.
type UpdatePatch struct {
	CompanyName    *string `json:"company_name"`
	CompanyAddress *string `json:"company_address"`
	CompanyEmail   *string `json:"company_email"`

	DefaultWorkStart *string `json:"default_work_start"`
	DefaultWorkEnd   *string `json:"default_work_end"`
	FlexibleHours    *bool   `json:"flexible_hours"`

	GraceMinutesIn  *int  `json:"grace_minutes_in"`
	GraceMinutesOut *int  `json:"grace_minutes_out"`
	AutoClockOut    *bool `json:"auto_clock_out"`

	LeaveRequireApproval *bool `json:"leave_require_approval"`
	MaxAdvanceDays       *int  `json:"max_advance_days"`
	AllowSameDayLeave    *bool `json:"allow_same_day_leave"`

	NotificationsEnabled *bool `json:"notifications_enabled"`
	NotifyManager        *bool `json:"notify_manager"`

	Version int `json:"version"`
}

// Get returns the singleton, seeding it together with the default department
// and leave types on first access.
func Get() (*models.Settings, error) {
	var s models.Settings
	err := database.DB.First(&s, "id = ?", singletonID).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := Seed(database.DB); err != nil {
		return nil, err
	}
	if err := database.DB.First(&s, "id = ?", singletonID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Seed creates the settings singleton and the default lists if they are
// missing. Safe to call more than once.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Settings{}).Where("id = ?", singletonID).Count(&count)
		if count == 0 {
			s := models.Settings{
				ID:                   singletonID,
				CompanyName:          "My Company",
				DefaultWorkStart:     "09:00",
				DefaultWorkEnd:       "18:00",
				GraceMinutesIn:       15,
				GraceMinutesOut:      15,
				LeaveRequireApproval: true,
				MaxAdvanceDays:       90,
				AllowSameDayLeave:    true,
				NotificationsEnabled: true,
				NotifyManager:        true,
				Version:              1,
			}
			if err := tx.Create(&s).Error; err != nil {
				return err
			}
		}

		tx.Model(&models.Department{}).Count(&count)
		if count == 0 {
			dept := models.Department{Name: "General", Description: "Default department", IsDefault: true}
			if err := tx.Create(&dept).Error; err != nil {
				return err
			}
		}

		tx.Model(&models.LeaveType{}).Count(&count)
		if count == 0 {
			types := []models.LeaveType{
				{Name: "Annual Leave", Description: "Paid annual leave", DaysAllowed: 20, RequireApproval: true, Color: "blue", IsDefault: true, IsActive: true},
				{Name: "Sick Leave", Description: "Medical leave", DaysAllowed: 10, RequireApproval: true, Color: "red", IsDefault: true, IsActive: true},
				{Name: "Personal Leave", Description: "Personal matters", DaysAllowed: 5, RequireApproval: true, Color: "orange", IsDefault: true, IsActive: true},
			}
			if err := tx.Create(&types).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Update merges the patch onto the singleton. The write is conditional on the
// caller's version so two concurrent read-modify-write cycles cannot silently
// lose each other's fields.
func Update(patch *UpdatePatch) (*models.Settings, error) {
	s, err := Get()
	if err != nil {
		return nil, err
	}

	if patch.CompanyName != nil {
		s.CompanyName = strings.TrimSpace(*patch.CompanyName)
	}
	if patch.CompanyAddress != nil {
		s.CompanyAddress = *patch.CompanyAddress
	}
	if patch.CompanyEmail != nil {
		s.CompanyEmail = strings.TrimSpace(*patch.CompanyEmail)
	}
	if patch.DefaultWorkStart != nil {
		s.DefaultWorkStart = *patch.DefaultWorkStart
	}
	if patch.DefaultWorkEnd != nil {
		s.DefaultWorkEnd = *patch.DefaultWorkEnd
	}
	if patch.FlexibleHours != nil {
		s.FlexibleHours = *patch.FlexibleHours
	}
	if patch.GraceMinutesIn != nil {
		s.GraceMinutesIn = *patch.GraceMinutesIn
	}
	if patch.GraceMinutesOut != nil {
		s.GraceMinutesOut = *patch.GraceMinutesOut
	}
	if patch.AutoClockOut != nil {
		s.AutoClockOut = *patch.AutoClockOut
	}
	if patch.LeaveRequireApproval != nil {
		s.LeaveRequireApproval = *patch.LeaveRequireApproval
	}
	if patch.MaxAdvanceDays != nil {
		s.MaxAdvanceDays = *patch.MaxAdvanceDays
	}
	if patch.AllowSameDayLeave != nil {
		s.AllowSameDayLeave = *patch.AllowSameDayLeave
	}
	if patch.NotificationsEnabled != nil {
		s.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if patch.NotifyManager != nil {
		s.NotifyManager = *patch.NotifyManager
	}

	s.Version = patch.Version + 1
	s.UpdatedAt = time.Now()

	res := database.DB.Model(&models.Settings{}).
		Where("id = ? AND version = ?", singletonID, patch.Version).
		Select("*").Omit("id", "created_at").
		Updates(s)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrVersionConflict
	}

	return s, nil
}

// ---------------------------------
// Department list
// ---------------------------------

func ListDepartments() ([]models.Department, error) {
	var depts []models.Department
	err := database.DB.Order("created_at asc").Find(&depts).Error
	return depts, err
}

func AddDepartment(name, description string) (*models.Department, error) {
	name = strings.TrimSpace(name)

	var count int64
	if err := database.DB.Model(&models.Department{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateName
	}

	dept := models.Department{Name: name, Description: description}
	if err := database.DB.Create(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func UpdateDepartment(id uint, name, description *string) (*models.Department, error) {
	var dept models.Department
	if err := database.DB.First(&dept, "id = ?", id).Error; err != nil {
		return nil, ErrNotFound
	}

	if name != nil {
		newName := strings.TrimSpace(*name)
		var count int64
		if err := database.DB.Model(&models.Department{}).
			Where("name = ? AND id <> ?", newName, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateName
		}
		dept.Name = newName
	}
	if description != nil {
		dept.Description = *description
	}

	// id and is_default survive every edit
	if err := database.DB.Save(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func DeleteDepartment(id uint) error {
	var dept models.Department
	if err := database.DB.First(&dept, "id = ?", id).Error; err != nil {
		return ErrNotFound
	}
	if dept.IsDefault {
		return ErrDefaultProtected
	}
	return database.DB.Delete(&models.Department{}, "id = ?", id).Error
}

// ---------------------------------
// Leave type list
// ---------------------------------

type LeaveTypePatch struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	DaysAllowed     *int    `json:"days_allowed" validate:"omitempty,min=0"`
	RequireApproval *bool   `json:"require_approval"`
	Color           *string `json:"color"`
	IsActive        *bool   `json:"is_active"`
}

func ListLeaveTypes() ([]models.LeaveType, error) {
	var types []models.LeaveType
	err := database.DB.Order("created_at asc").Find(&types).Error
	return types, err
}

func AddLeaveType(lt *models.LeaveType) (*models.LeaveType, error) {
	lt.Name = strings.TrimSpace(lt.Name)
	lt.IsDefault = false

	var count int64
	if err := database.DB.Model(&models.LeaveType{}).Where("name = ?", lt.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateName
	}

	if err := database.DB.Create(lt).Error; err != nil {
		return nil, err
	}
	return lt, nil
}

func UpdateLeaveType(id uint, patch *LeaveTypePatch) (*models.LeaveType, error) {
	var lt models.LeaveType
	if err := database.DB.First(&lt, "id = ?", id).Error; err != nil {
		return nil, ErrNotFound
	}

	if patch.Name != nil {
		newName := strings.TrimSpace(*patch.Name)
		var count int64
		if err := database.DB.Model(&models.LeaveType{}).
			Where("name = ? AND id <> ?", newName, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateName
		}
		lt.Name = newName
	}
	if patch.Description != nil {
		lt.Description = *patch.Description
	}
	if patch.DaysAllowed != nil {
		lt.DaysAllowed = *patch.DaysAllowed
	}
	if patch.RequireApproval != nil {
		lt.RequireApproval = *patch.RequireApproval
	}
	if patch.Color != nil {
		lt.Color = *patch.Color
	}
	if patch.IsActive != nil {
		lt.IsActive = *patch.IsActive
	}

	if err := database.DB.Save(&lt).Error; err != nil {
		return nil, err
	}
	return &lt, nil
}

func DeleteLeaveType(id uint) error {
	var lt models.LeaveType
	if err := database.DB.First(&lt, "id = ?", id).Error; err != nil {
		return ErrNotFound
	}
	if lt.IsDefault {
		return ErrDefaultProtected
	}
	return database.DB.Delete(&models.LeaveType{}, "id = ?", id).Error
}
