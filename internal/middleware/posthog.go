package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// EventTracker sends analytics events. *utils.PosthogClientWrapper implements it.
type EventTracker interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

const (
	apiPrefix        = "/api/v1"
	eventPropsCtxKey = "posthog_event_props"
)

// recurringEvents names the event for each tracked route. Reads are not tracked.
var recurringEvents = map[string]string{
	"POST /projects/:projectID/recurring-templates":                   "recurring_template_created",
	"POST /projects/:projectID/recurring-templates/catch-up":          "recurring_project_caught_up",
	"PATCH /recurring-templates/:templateID":                          "recurring_template_updated",
	"POST /recurring-templates/:templateID/deactivate":                "recurring_template_deactivated",
	"DELETE /recurring-templates/:templateID":                         "recurring_template_deleted",
	"DELETE /recurring-templates/:templateID/deleted-instances/:date": "recurring_instance_restored",
	"DELETE /transactions/:transactionID":                             "recurring_transaction_deleted",
	"POST /recurring/generate":                                        "recurring_generation_triggered",
}

// routeParamProps maps route parameters onto event property names.
var routeParamProps = map[string]string{
	"projectID":     "project_id",
	"templateID":    "template_id",
	"transactionID": "transaction_id",
	"date":          "instance_date",
}

// PosthogMiddleware sends one event per successful recurring-transaction change.
// A failed request is only tracked when its handler attached outcome properties
// with SetEventProperty, as the generation trigger does for partial failures.
func PosthogMiddleware(tracker EventTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tracker == nil || !tracker.IsInitialized() {
			c.Next()
			return
		}

		c.Next()

		event, ok := recurringEvents[c.Request.Method+" "+strings.TrimPrefix(c.FullPath(), apiPrefix)]
		if !ok {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}
		extra, hasExtra := c.Get(eventPropsCtxKey)
		if c.Writer.Status() >= http.StatusBadRequest && !hasExtra {
			return
		}

		props := map[string]any{"status_code": c.Writer.Status()}
		for _, p := range c.Params {
			if name, ok := routeParamProps[p.Key]; ok {
				props[name] = p.Value
			}
		}
		if m, ok := extra.(map[string]any); ok {
			for k, v := range m {
				props[k] = v
			}
		}
		tracker.Enqueue(userID, event, props)
	}
}

// SetEventProperty adds a property to the event PosthogMiddleware sends for this request.
func SetEventProperty(c *gin.Context, key string, value any) {
	props, _ := c.Get(eventPropsCtxKey)
	m, ok := props.(map[string]any)
	if !ok {
		m = map[string]any{}
		c.Set(eventPropsCtxKey, m)
	}
	m[key] = value
}
