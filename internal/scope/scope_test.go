package scope

import (
	"testing"

	"attendance-backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCanViewUser(t *testing.T) {
	sales := strPtr("Sales")
	support := strPtr("Support")

	eve := &models.User{ID: 1, Role: models.RoleEmployee, Department: sales}
	dan := &models.User{ID: 2, Role: models.RoleEmployee, Department: support}

	employee := Principal{UserID: 1, Role: models.RoleEmployee, Department: sales}
	manager := Principal{UserID: 3, Role: models.RoleManager, Department: sales}
	admin := Principal{UserID: 4, Role: models.RoleAdmin}

	if !employee.CanViewUser(eve) {
		t.Error("employee must see themselves")
	}
	if employee.CanViewUser(dan) {
		t.Error("employee must not see others")
	}
	if !manager.CanViewUser(eve) {
		t.Error("manager must see own-department users")
	}
	if manager.CanViewUser(dan) {
		t.Error("manager must not see other departments")
	}
	if !admin.CanViewUser(eve) || !admin.CanViewUser(dan) {
		t.Error("admin must see everyone")
	}
}

func TestCanCreateUser(t *testing.T) {
	sales := strPtr("Sales")
	support := strPtr("Support")

	manager := Principal{UserID: 3, Role: models.RoleManager, Department: sales}
	admin := Principal{UserID: 4, Role: models.RoleAdmin}
	employee := Principal{UserID: 1, Role: models.RoleEmployee, Department: sales}

	cases := []struct {
		name string
		p    Principal
		role models.UserRole
		dept *string
		want bool
	}{
		{"admin creates admin", admin, models.RoleAdmin, nil, true},
		{"admin creates manager", admin, models.RoleManager, sales, true},
		{"manager creates employee in own dept", manager, models.RoleEmployee, sales, true},
		{"manager creates employee elsewhere", manager, models.RoleEmployee, support, false},
		{"manager creates manager", manager, models.RoleManager, sales, false},
		{"manager creates admin", manager, models.RoleAdmin, sales, false},
		{"employee creates anyone", employee, models.RoleEmployee, sales, false},
	}
	for _, c := range cases {
		if got := c.p.CanCreateUser(c.role, c.dept); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCanManageAndReview(t *testing.T) {
	sales := strPtr("Sales")
	support := strPtr("Support")

	salesEmp := &models.User{ID: 1, Role: models.RoleEmployee, Department: sales}
	salesMgr2 := &models.User{ID: 5, Role: models.RoleManager, Department: sales}
	supportEmp := &models.User{ID: 2, Role: models.RoleEmployee, Department: support}

	manager := Principal{UserID: 3, Role: models.RoleManager, Department: sales}
	admin := Principal{UserID: 4, Role: models.RoleAdmin}

	if !manager.CanManageUser(salesEmp) {
		t.Error("manager must manage employees in own department")
	}
	if manager.CanManageUser(supportEmp) {
		t.Error("manager must not manage other departments")
	}
	if manager.CanManageUser(salesMgr2) {
		t.Error("manager must not manage fellow managers")
	}
	if !admin.CanManageUser(salesMgr2) {
		t.Error("admin manages everyone")
	}

	if !manager.CanReview(salesEmp) {
		t.Error("manager reviews own-department requests")
	}
	if manager.CanReview(supportEmp) {
		t.Error("manager must not review other departments")
	}
	if !admin.CanReview(supportEmp) {
		t.Error("admin reviews everything")
	}
}
