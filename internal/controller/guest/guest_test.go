package guest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
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
	gc := NewGuestController(testDB)
	r.POST("/guest-application", gc.ApplyHandler)
	r.GET("/guest-application", gc.GetByEmail)
	r.GET("/admin/guest-applications", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleAdmin, model.RoleSuperAdmin), gc.List)
	r.PATCH("/admin/guest-applications/:id/status", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleAdmin, model.RoleSuperAdmin), gc.UpdateStatus)
	return r
}

func cleanupGuestApplications(t *testing.T) {
	t.Helper()
	if err := testDB.Where("1 = 1").Delete(&model.GuestApplication{}).Error; err != nil {
		t.Fatalf("failed to clean guest applications: %v", err)
	}
}

func TestGuestApply_Success(t *testing.T) {
	cleanupGuestApplications(t)

	r := newRouter()
	body := gin.H{
		"job_id":      database.TestJob1.ID,
		"guest_email": "visitor@example.com",
		"guest_name":  "Visitor",
		"message":     "Interested in this role.",
	}

	rec, resp := testutil.MakeJSONRequest(body, "", r, "/guest-application", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "visitor@example.com", resp["guest_email"])
	assert.Equal(t, model.GuestStatusPending, resp["status"])
}

func TestGuestApply_DuplicateIgnoresCasing(t *testing.T) {
	cleanupGuestApplications(t)

	r := newRouter()

	rec, first := testutil.MakeJSONRequest(gin.H{
		"job_id":      database.TestJob1.ID,
		"guest_email": "A@x.com",
	}, "", r, "/guest-application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	// stored lowercased
	assert.Equal(t, "a@x.com", first["guest_email"])

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"job_id":      database.TestJob1.ID,
		"guest_email": "a@X.COM",
	}, "", r, "/guest-application", http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, first["id"], resp["application_id"])
}

func TestGuestApply_SameEmailDifferentJobs(t *testing.T) {
	cleanupGuestApplications(t)

	r := newRouter()

	rec, _ := testutil.MakeJSONRequest(gin.H{
		"job_id":      database.TestJob1.ID,
		"guest_email": "multi@example.com",
	}, "", r, "/guest-application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{
		"job_id":      database.TestJob2.ID,
		"guest_email": "multi@example.com",
	}, "", r, "/guest-application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGuestApply_MissingEmail(t *testing.T) {
	r := newRouter()

	rec, _ := testutil.MakeJSONRequest(gin.H{"job_id": database.TestJob1.ID}, "", r, "/guest-application", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuestGetByEmail(t *testing.T) {
	cleanupGuestApplications(t)

	r := newRouter()
	rec, _ := testutil.MakeJSONRequest(gin.H{
		"job_id":      database.TestJob1.ID,
		"guest_email": "Lookup@Example.com",
	}, "", r, "/guest-application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req, _ := http.NewRequest(http.MethodGet, "/guest-application?email=LOOKUP@example.com", nil)
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), "lookup@example.com")
}

func TestGuestUpdateStatus_BumpsReviewedAt(t *testing.T) {
	cleanupGuestApplications(t)

	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	rec, created := testutil.MakeJSONRequest(gin.H{
		"job_id":      database.TestJob1.ID,
		"guest_email": "review@example.com",
	}, "", r, "/guest-application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)

	endpoint := fmt.Sprintf("/admin/guest-applications/%v/status", created["id"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": model.GuestStatusReviewed}, adminToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)

	var after model.GuestApplication
	assert.NoError(t, testDB.First(&after, "id = ?", created["id"]).Error)
	assert.Equal(t, model.GuestStatusReviewed, after.Status)
	assert.NotNil(t, after.ReviewedAt)
	firstReview := *after.ReviewedAt

	time.Sleep(10 * time.Millisecond)
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": model.GuestStatusAccepted, "note": "strong profile"}, adminToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.NoError(t, testDB.First(&after, "id = ?", created["id"]).Error)
	assert.Equal(t, "strong profile", after.Note)
	assert.True(t, after.ReviewedAt.After(firstReview))
}

func TestGuestList_RequiresAdmin(t *testing.T) {
	userToken, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	rec, _ := testutil.MakeJSONRequest(nil, userToken, r, "/admin/guest-applications", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
