package scope

import (
	"errors"

	"attendance-backend/internal/models"

	"gorm.io/gorm"
)

// ErrForbidden is returned by services when the principal's role does not
// permit the requested mutation.
var ErrForbidden = errors.New("operation not permitted for this role")

// Principal is the authenticated actor. Every data-facing package derives its
// own query predicate and mutation checks from it; callers never pass in a
// pre-filtered scope of their own.
type Principal struct {
	UserID     uint
	Role       models.UserRole
	Department *string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

func (p Principal) SameDepartment(dept *string) bool {
	return p.Department != nil && dept != nil && *p.Department == *dept
}

// VisibleUsers narrows a query over the users table to what the principal may
// see: employees see themselves, managers their department, admins everything.
func (p Principal) VisibleUsers(q *gorm.DB) *gorm.DB {
	switch p.Role {
	case models.RoleAdmin:
		return q
	case models.RoleManager:
		if p.Department == nil {
			return q.Where("id = ?", p.UserID)
		}
		return q.Where("department = ? OR id = ?", *p.Department, p.UserID)
	default:
		return q.Where("id = ?", p.UserID)
	}
}

// VisibleOwned narrows a query over a user-owned table (attendance events,
// leave/overtime requests) via ownerColumn.
func (p Principal) VisibleOwned(db *gorm.DB, q *gorm.DB, ownerColumn string) *gorm.DB {
	switch p.Role {
	case models.RoleAdmin:
		return q
	case models.RoleManager:
		if p.Department == nil {
			return q.Where(ownerColumn+" = ?", p.UserID)
		}
		sub := db.Model(&models.User{}).Select("id").Where("department = ?", *p.Department)
		return q.Where(ownerColumn+" IN (?) OR "+ownerColumn+" = ?", sub, p.UserID)
	default:
		return q.Where(ownerColumn+" = ?", p.UserID)
	}
}

// CanViewUser reports whether the principal may read the target's records.
func (p Principal) CanViewUser(target *models.User) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return target.ID == p.UserID || p.SameDepartment(target.Department)
	default:
		return target.ID == p.UserID
	}
}

// CanCreateUser: admins create anyone; managers only employee-role accounts
// inside their own department.
func (p Principal) CanCreateUser(role models.UserRole, dept *string) bool {
	if p.IsAdmin() {
		return true
	}
	if p.Role != models.RoleManager {
		return false
	}
	return role == models.RoleEmployee && p.SameDepartment(dept)
}

// CanManageUser covers edit and deactivate of an existing account.
func (p Principal) CanManageUser(target *models.User) bool {
	if p.IsAdmin() {
		return true
	}
	if p.Role != models.RoleManager {
		return false
	}
	return target.Role == models.RoleEmployee && p.SameDepartment(target.Department)
}

// CanReview reports whether the principal may approve or reject a request
// owned by the given user.
func (p Principal) CanReview(owner *models.User) bool {
	if p.IsAdmin() {
		return true
	}
	if p.Role != models.RoleManager {
		return false
	}
	return p.SameDepartment(owner.Department)
}
