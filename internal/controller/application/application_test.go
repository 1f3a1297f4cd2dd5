package application

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
	ac := NewApplicationController(testDB)
	r.POST("/application", middleware.RequireAuth(testDB), ac.ApplyHandler)
	r.GET("/application/me", middleware.RequireAuth(testDB), ac.MyApplications)
	r.PATCH("/application/:id/status", middleware.RequireAuth(testDB), ac.UpdateStatus)
	return r
}

func cleanupApplications(t *testing.T) {
	t.Helper()
	if err := testDB.Where("1 = 1").Delete(&model.Application{}).Error; err != nil {
		t.Fatalf("failed to clean applications: %v", err)
	}
}

func TestApplyHandler_Success(t *testing.T) {
	cleanupApplications(t)

	token, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{
		"job_id":       database.TestJob1.ID,
		"cover_letter": "I would love to work on your backend.",
	}

	rec, resp := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(database.TestJob1.ID), resp["job_id"])
	assert.Equal(t, model.ApplicationStatusApplied, resp["status"])
}

func TestApplyHandler_Duplicate(t *testing.T) {
	cleanupApplications(t)

	token, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{"job_id": database.TestJob1.ID}

	rec, first := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Second submission must conflict and point at the surviving record
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, first["id"], resp["application_id"])
	assert.NotEmpty(t, resp["applied_at"])
}

func TestApplyHandler_SameJobDifferentUsers(t *testing.T) {
	cleanupApplications(t)

	token1, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	token2, err := auth.GetAccessToken(t, testDB, database.TestUser2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{"job_id": database.TestJob1.ID}

	rec, _ := testutil.MakeJSONRequest(body, token1, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Uniqueness is per (user, job), another user may still apply
	rec, _ = testutil.MakeJSONRequest(body, token2, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestApplyHandler_UnknownJob(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	body := gin.H{"job_id": 999999}

	rec, _ := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMyApplications_Envelope(t *testing.T) {
	cleanupApplications(t)

	token, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	for _, jobID := range []uint{database.TestJob1.ID, database.TestJob2.ID} {
		rec, _ := testutil.MakeJSONRequest(gin.H{"job_id": jobID}, token, r, "/application", http.MethodPost)
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/application/me?limit=1&page=2", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), resp["total"])
	assert.Equal(t, float64(2), resp["total_pages"])
	assert.Equal(t, float64(2), resp["current_page"])
	assert.Equal(t, false, resp["has_next_page"])
	assert.Equal(t, true, resp["has_prev_page"])
	assert.Len(t, resp["applications"], 1)
}

func TestUpdateStatus_BumpsLastUpdated(t *testing.T) {
	cleanupApplications(t)

	userToken, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	employerToken, err := auth.GetAccessToken(t, testDB, database.TestEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	rec, created := testutil.MakeJSONRequest(gin.H{"job_id": database.TestJob1.ID}, userToken, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)

	id := created["id"]
	endpoint := fmt.Sprintf("/application/%v/status", id)

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": model.ApplicationStatusUnderReview}, employerToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)

	var after model.Application
	assert.NoError(t, testDB.First(&after, "id = ?", id).Error)
	assert.Equal(t, model.ApplicationStatusUnderReview, after.Status)
	firstUpdate := after.LastUpdated

	// Re-sending the same status is idempotent in value but still bumps the timestamp
	time.Sleep(10 * time.Millisecond)
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": model.ApplicationStatusUnderReview}, employerToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.NoError(t, testDB.First(&after, "id = ?", id).Error)
	assert.True(t, after.LastUpdated.After(firstUpdate))
}

func TestUpdateStatus_ApplicantCanOnlyWithdraw(t *testing.T) {
	cleanupApplications(t)

	userToken, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	rec, created := testutil.MakeJSONRequest(gin.H{"job_id": database.TestJob1.ID}, userToken, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)

	endpoint := fmt.Sprintf("/application/%v/status", created["id"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": model.ApplicationStatusOffered}, userToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": model.ApplicationStatusWithdrawn}, userToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatus_UnknownValue(t *testing.T) {
	cleanupApplications(t)

	userToken, err := auth.GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()
	rec, created := testutil.MakeJSONRequest(gin.H{"job_id": database.TestJob1.ID}, userToken, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)

	endpoint := fmt.Sprintf("/application/%v/status", created["id"])
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "promoted"}, userToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
