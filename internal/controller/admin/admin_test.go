package admin

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"

	"JobQuest-backend/internal/auth"
	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/middleware"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/testutil"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

func newRouter() *gin.Engine {
	r := gin.Default()
	ac := NewAdminController(testDB)
	needAdmin := r.Group("/admin")
	needAdmin.Use(middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleAdmin, model.RoleSuperAdmin))
	needAdmin.GET("/stats", ac.GetDashboardStats)
	needAdmin.GET("/users", ac.GetUsers)
	needAdmin.GET("/jobs", ac.GetJobs)
	needAdmin.PATCH("/users/:user_id/active", ac.SetUserActive)
	needAdmin.GET("/export/applications", ac.ExportApplicationsCSV)
	needSuperAdmin := needAdmin.Group("")
	needSuperAdmin.Use(middleware.CheckRole(model.RoleSuperAdmin))
	needSuperAdmin.PATCH("/users/:user_id/role", ac.ChangeUserRole)
	return r
}

func TestGetDashboardStats_Shape(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	rec, resp := testutil.MakeJSONRequest(nil, adminToken, r, "/admin/stats", http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)

	users, ok := resp["users"].(map[string]interface{})
	assert.True(t, ok)
	// 5 seeded users plus the bootstrap admin
	assert.GreaterOrEqual(t, users["total"], float64(6))
	assert.GreaterOrEqual(t, users["this_month"], float64(6))

	jobs, ok := resp["jobs"].(map[string]interface{})
	assert.True(t, ok)
	assert.GreaterOrEqual(t, jobs["total"], float64(3))
	assert.GreaterOrEqual(t, jobs["active"], float64(2))
	assert.GreaterOrEqual(t, jobs["pending"], float64(1))

	companies, ok := resp["companies"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, float64(2), companies["total"])
	assert.Equal(t, float64(1), companies["verified"])
	assert.Equal(t, float64(1), companies["pending"])

	assert.NotNil(t, resp["guest_applications"])
	assert.NotNil(t, resp["application_status"])
	assert.NotNil(t, resp["recent_jobs"])
}

func TestGetDashboardStats_CountsRecentGuestApplications(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	guestApp := model.GuestApplication{
		GuestEmail: "stats-window@example.com",
		JobID:      database.TestJob1.ID,
		Status:     model.GuestStatusPending,
	}
	assert.NoError(t, testDB.Create(&guestApp).Error)
	defer testDB.Delete(&guestApp)

	r := newRouter()
	rec, resp := testutil.MakeJSONRequest(nil, adminToken, r, "/admin/stats", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	stats := resp["guest_applications"].(map[string]interface{})
	// A just-created record falls inside both the calendar month and the
	// rolling seven day window
	assert.GreaterOrEqual(t, stats["this_month"], float64(1))
	assert.GreaterOrEqual(t, stats["recent"], float64(1))
	assert.GreaterOrEqual(t, stats["total"], stats["recent"])
}

func TestGetDashboardStats_RequiresAdmin(t *testing.T) {
	userToken, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	rec, _ := testutil.MakeJSONRequest(nil, userToken, r, "/admin/stats", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetUsers_RoleFilter(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	rec, resp := testutil.MakeJSONRequest(nil, adminToken, r, "/admin/users?role=employer", http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), resp["total"])
	assert.Len(t, resp["users"], 2)
}

func TestSetUserActive_Deactivates(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	endpoint := fmt.Sprintf("/admin/users/%s/active?active=false", database.TestUser2.ID)

	rec, resp := testutil.MakeJSONRequest(nil, adminToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["active"])

	// Deactivated accounts can no longer authenticate
	_, err = auth.GetAccessToken(t, testDB, database.TestUser2.Username, database.TestSeedPassword)
	assert.NoError(t, err) // token issuance itself still works, middleware rejects it
	var user model.User
	assert.NoError(t, testDB.First(&user, "id = ?", database.TestUser2.ID).Error)
	assert.False(t, user.Active)

	// restore
	endpoint = fmt.Sprintf("/admin/users/%s/active?active=true", database.TestUser2.ID)
	rec, _ = testutil.MakeJSONRequest(nil, adminToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangeUserRole_SuperAdminOnly(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	endpoint := fmt.Sprintf("/admin/users/%s/role?role=employer", database.TestUser2.ID)

	// The seeded admin is a plain admin, not a super admin
	rec, _ := testutil.MakeJSONRequest(nil, adminToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChangeUserRole_UnknownRole(t *testing.T) {
	// Promote the seeded admin for this test
	assert.NoError(t, testDB.Model(&model.User{}).
		Where("id = ?", database.TestAdminUser.ID).
		Update("role", model.RoleSuperAdmin).Error)
	defer func() {
		_ = testDB.Model(&model.User{}).
			Where("id = ?", database.TestAdminUser.ID).
			Update("role", model.RoleAdmin).Error
	}()

	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	endpoint := fmt.Sprintf("/admin/users/%s/role?role=owner", database.TestUser2.ID)

	rec, _ := testutil.MakeJSONRequest(nil, adminToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportApplicationsCSV(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	app := model.Application{
		UserID:      database.TestUser1.ID,
		JobID:       database.TestJob1.ID,
		Status:      model.ApplicationStatusApplied,
		LastUpdated: time.Now(),
	}
	assert.NoError(t, testDB.Create(&app).Error)
	defer testDB.Delete(&app)

	r := newRouter()
	rec, _ := testutil.MakeJSONRequest(nil, adminToken, r, "/admin/export/applications", http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "id,username,email,job_id,job_title,status,applied_at,last_updated")
	assert.Contains(t, rec.Body.String(), database.TestUser1.Username)
}
