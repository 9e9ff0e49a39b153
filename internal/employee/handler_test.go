package employee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"attendance-backend/internal/auth"
	"attendance-backend/internal/config"
	"attendance-backend/internal/models"
	"attendance-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

var testCfg = &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}

func testApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/auth/login", auth.LoginHandler(testCfg))

	protected := api.Group("", auth.JWTMiddleware(testCfg))
	protected.Get("/employees", ListEmployeesHandler())
	protected.Get("/employees/:id", GetEmployeeHandler())
	protected.Post("/employees",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		CreateEmployeeHandler())
	protected.Put("/employees/:id",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		UpdateEmployeeHandler())
	protected.Delete("/employees/:id",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		DeactivateEmployeeHandler())

	return app
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(testCfg.JWTSecret, u)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestCreateEmployeeRoleRules(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testApp(t)
	admin := testutil.CreateUser(t, db, "Root", "root@example.com", models.RoleAdmin, nil)
	manager := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleManager, testutil.StrPtr("Sales"))

	// admin may create a manager anywhere
	resp := doJSON(t, app, "POST", "/api/employees", map[string]any{
		"name": "Carol", "email": "carol@example.com", "password": "secret123",
		"role": "manager", "department": "Support",
	}, tokenFor(t, admin))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin create manager = %d, want 201", resp.StatusCode)
	}

	// manager may create an employee in their own department
	resp = doJSON(t, app, "POST", "/api/employees", map[string]any{
		"name": "Eve", "email": "eve@example.com", "password": "secret123",
		"department": "Sales",
	}, tokenFor(t, manager))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("manager create employee = %d, want 201", resp.StatusCode)
	}

	// ...but not outside it
	resp = doJSON(t, app, "POST", "/api/employees", map[string]any{
		"name": "Dan", "email": "dan@example.com", "password": "secret123",
		"department": "Support",
	}, tokenFor(t, manager))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("manager create in other department = %d, want 403", resp.StatusCode)
	}

	// ...and never a manager or admin account
	resp = doJSON(t, app, "POST", "/api/employees", map[string]any{
		"name": "Mallory", "email": "mallory@example.com", "password": "secret123",
		"role": "manager", "department": "Sales",
	}, tokenFor(t, manager))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("manager create manager = %d, want 403", resp.StatusCode)
	}

	// duplicate email is a validation error
	resp = doJSON(t, app, "POST", "/api/employees", map[string]any{
		"name": "Eve Again", "email": "eve@example.com", "password": "secret123",
		"department": "Sales",
	}, tokenFor(t, manager))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate email = %d, want 400", resp.StatusCode)
	}
}

func TestListEmployeesScoping(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testApp(t)
	admin := testutil.CreateUser(t, db, "Root", "root@example.com", models.RoleAdmin, nil)
	manager := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleManager, testutil.StrPtr("Sales"))
	eve := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee, testutil.StrPtr("Sales"))
	testutil.CreateUser(t, db, "Dan", "dan@example.com", models.RoleEmployee, testutil.StrPtr("Support"))

	list := func(token string) []EmployeeResponse {
		t.Helper()
		resp := doJSON(t, app, "GET", "/api/employees", nil, token)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list status = %d", resp.StatusCode)
		}
		var out []EmployeeResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		return out
	}

	if got := list(tokenFor(t, admin)); len(got) != 4 {
		t.Errorf("admin sees %d users, want 4", len(got))
	}
	if got := list(tokenFor(t, manager)); len(got) != 2 { // Bob + Eve
		t.Errorf("manager sees %d users, want 2", len(got))
	}
	if got := list(tokenFor(t, eve)); len(got) != 1 || got[0].ID != eve.ID {
		t.Errorf("employee list is not just themselves: %d entries", len(got))
	}
}

func TestDeactivateInsteadOfDelete(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testApp(t)
	admin := testutil.CreateUser(t, db, "Root", "root@example.com", models.RoleAdmin, nil)
	eve := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee, testutil.StrPtr("Sales"))

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/api/employees/%d", eve.ID), nil, tokenFor(t, admin))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("deactivate status = %d, want 204", resp.StatusCode)
	}

	var after models.User
	if err := db.First(&after, "id = ?", eve.ID).Error; err != nil {
		t.Fatalf("user row must survive deletion: %v", err)
	}
	if after.Active {
		t.Error("user still active after delete")
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 2 {
		t.Errorf("row count changed: %d, want 2", count)
	}

	// self-deactivation is refused
	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/employees/%d", admin.ID), nil, tokenFor(t, admin))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("self-deactivate = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateEmployeeRoleChangeIsAdminOnly(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testApp(t)
	admin := testutil.CreateUser(t, db, "Root", "root@example.com", models.RoleAdmin, nil)
	manager := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleManager, testutil.StrPtr("Sales"))
	eve := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee, testutil.StrPtr("Sales"))

	// manager renames an employee in their department
	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/employees/%d", eve.ID), map[string]any{
		"name": "Evelyn",
	}, tokenFor(t, manager))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("manager rename = %d, want 200", resp.StatusCode)
	}

	// but cannot promote
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/employees/%d", eve.ID), map[string]any{
		"role": "manager",
	}, tokenFor(t, manager))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("manager promote = %d, want 403", resp.StatusCode)
	}

	// admin can
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/employees/%d", eve.ID), map[string]any{
		"role": "manager",
	}, tokenFor(t, admin))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin promote = %d, want 200", resp.StatusCode)
	}

	var after models.User
	db.First(&after, "id = ?", eve.ID)
	if after.Role != models.RoleManager {
		t.Errorf("role = %s, want manager", after.Role)
	}
	if after.Name != "Evelyn" {
		t.Errorf("earlier rename lost: %s", after.Name)
	}
}
