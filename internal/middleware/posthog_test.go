package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/construction_budget_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackedEvent struct {
	userID string
	name   string
	props  map[string]any
}

type recordingTracker struct {
	enabled bool
	events  []trackedEvent
}

func (r *recordingTracker) IsInitialized() bool { return r.enabled }
func (r *recordingTracker) Enqueue(distinctID string, event string, properties map[string]any) {
	r.events = append(r.events, trackedEvent{userID: distinctID, name: event, props: properties})
}

func analyticsRouter(tracker middleware.EventTracker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(testSecret), middleware.PosthogMiddleware(tracker))
	v1.POST("/projects/:projectID/recurring-templates", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	v1.GET("/recurring-templates/:templateID", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	v1.DELETE("/recurring-templates/:templateID/deleted-instances/:date", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	v1.POST("/recurring/generate", func(c *gin.Context) {
		middleware.SetEventProperty(c, "mode", c.Query("mode"))
		middleware.SetEventProperty(c, "failed", 1)
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func send(t *testing.T, r *gin.Engine, method, path string) int {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, validClaims("user-42")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestPosthogMiddleware_NamesEventAndRouteIDs(t *testing.T) {
	tracker := &recordingTracker{enabled: true}
	r := analyticsRouter(tracker)

	assert.Equal(t, http.StatusCreated, send(t, r, http.MethodPost, "/api/v1/projects/p1/recurring-templates"))

	require.Len(t, tracker.events, 1)
	ev := tracker.events[0]
	assert.Equal(t, "user-42", ev.userID)
	assert.Equal(t, "recurring_template_created", ev.name)
	assert.Equal(t, "p1", ev.props["project_id"])
	assert.Equal(t, http.StatusCreated, ev.props["status_code"])
	assert.NotContains(t, ev.props, "template_id")
}

func TestPosthogMiddleware_SkipsReadsAndPlainFailures(t *testing.T) {
	tracker := &recordingTracker{enabled: true}
	r := analyticsRouter(tracker)

	send(t, r, http.MethodGet, "/api/v1/recurring-templates/t1")
	send(t, r, http.MethodDelete, "/api/v1/recurring-templates/t1/deleted-instances/2024-03-05")

	assert.Empty(t, tracker.events)
}

func TestPosthogMiddleware_TracksFailedGenerationWithOutcome(t *testing.T) {
	tracker := &recordingTracker{enabled: true}
	r := analyticsRouter(tracker)

	assert.Equal(t, http.StatusInternalServerError, send(t, r, http.MethodPost, "/api/v1/recurring/generate?mode=backlog"))

	require.Len(t, tracker.events, 1)
	ev := tracker.events[0]
	assert.Equal(t, "recurring_generation_triggered", ev.name)
	assert.Equal(t, "backlog", ev.props["mode"])
	assert.Equal(t, 1, ev.props["failed"])
}

func TestPosthogMiddleware_DisabledTracker(t *testing.T) {
	tracker := &recordingTracker{}
	r := analyticsRouter(tracker)

	assert.Equal(t, http.StatusCreated, send(t, r, http.MethodPost, "/api/v1/projects/p1/recurring-templates"))
	assert.Empty(t, tracker.events)
}
