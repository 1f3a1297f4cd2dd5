package job

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
	jc := NewJobController(testDB)
	r.GET("/job", jc.ListJobs)
	r.GET("/job/:id", jc.GetJobByID)
	needEmployer := r.Group("")
	needEmployer.Use(middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleEmployer, model.RoleAdmin, model.RoleSuperAdmin))
	needEmployer.POST("/job", jc.CreateJobHandler)
	needEmployer.PATCH("/job/:id/status", jc.UpdateJobStatus)
	return r
}

func TestListJobs_Envelope(t *testing.T) {
	r := newRouter()

	rec, resp := testutil.MakeJSONRequest(nil, "", r, "/job?limit=1", http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp["jobs"], 1)
	// Seeded data holds two active jobs; the draft one must not be listed
	assert.Equal(t, float64(2), resp["total"])
	assert.Equal(t, float64(2), resp["total_pages"])
	assert.Equal(t, float64(1), resp["current_page"])
	assert.Equal(t, true, resp["has_next_page"])
	assert.Equal(t, false, resp["has_prev_page"])
}

func TestListJobs_BogusSortFallsBack(t *testing.T) {
	r := newRouter()

	rec, resp := testutil.MakeJSONRequest(nil, "", r, "/job?sortBy=password;drop", http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, resp["jobs"])
}

func TestListJobs_Filters(t *testing.T) {
	r := newRouter()

	rec, resp := testutil.MakeJSONRequest(nil, "", r, "/job?remote=true", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), resp["total"])

	rec, resp = testutil.MakeJSONRequest(nil, "", r, "/job?search=microservices", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), resp["total"])

	rec, resp = testutil.MakeJSONRequest(nil, "", r, "/job?search=zzz-nothing", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), resp["total"])
	assert.Equal(t, false, resp["has_next_page"])
	assert.Equal(t, false, resp["has_prev_page"])
}

func TestGetJobByID_CountsViews(t *testing.T) {
	r := newRouter()

	var before model.Job
	assert.NoError(t, testDB.First(&before, "id = ?", database.TestJob1.ID).Error)

	endpoint := fmt.Sprintf("/job/%d", database.TestJob1.ID)
	rec, resp := testutil.MakeJSONRequest(nil, "", r, endpoint, http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(database.TestJob1.ID), resp["id"])

	var after model.Job
	assert.NoError(t, testDB.First(&after, "id = ?", database.TestJob1.ID).Error)
	assert.Equal(t, before.Views+1, after.Views)
}

func TestGetJobByID_NotFound(t *testing.T) {
	r := newRouter()

	rec, _ := testutil.MakeJSONRequest(nil, "", r, "/job/999999", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateJob_SnapshotsCompanyName(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{
		"title":      "Platform Engineer",
		"company_id": database.TestCompany1.ID.String(),
		"location":   "Berlin",
		"status":     model.JobStatusActive,
	}

	rec, resp := testutil.MakeJSONRequest(body, token, r, "/job", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, database.TestCompany1.Name, resp["company_name"])

	// cleanup so listing counts in other tests stay stable
	testDB.Where("title = ?", "Platform Engineer").Delete(&model.Job{})
}

func TestCreateJob_RejectsForeignCompany(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{
		"title":      "Spoofed Role",
		"company_id": database.TestCompany2.ID.String(),
	}

	rec, _ := testutil.MakeJSONRequest(body, token, r, "/job", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateJobStatus_OwnerOnly(t *testing.T) {
	owner, err := auth.GetAccessToken(t, testDB, database.TestEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	other, err := auth.GetAccessToken(t, testDB, database.TestEmployer2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	endpoint := fmt.Sprintf("/job/%d/status", database.TestJob1.ID)

	rec, _ := testutil.MakeJSONRequest(gin.H{"status": model.JobStatusPaused}, other, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": model.JobStatusPaused}, owner, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)

	// restore for other tests
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": model.JobStatusActive}, owner, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateJobStatus_UnknownValue(t *testing.T) {
	owner, err := auth.GetAccessToken(t, testDB, database.TestEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	endpoint := fmt.Sprintf("/job/%d/status", database.TestJob1.ID)

	rec, _ := testutil.MakeJSONRequest(gin.H{"status": "archived"}, owner, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
