package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/billing_dashboard/internal/utils"
	"github.com/gin-gonic/gin"
)

// dashboardEvents names the product events behind the dashboard's routes,
// keyed by method and route pattern.
var dashboardEvents = map[string]string{
	"GET /api/v1/ledger":                                           "dashboard_viewed",
	"POST /api/v1/ledger/transactions":                             "transaction_added",
	"DELETE /api/v1/ledger/transactions/:transactionID":            "transaction_deleted",
	"POST /api/v1/ledger/transactions/:transactionID/mark-success": "transaction_settled",
	"POST /api/v1/billing/plan":                                    "plan_switched",
	"PUT /api/v1/users/me":                                         "profile_updated",
	"PUT /api/v1/users/me/password":                                "password_changed",
}

// eventName returns the product event for a matched route. Unnamed routes
// are tracked under their flattened pattern.
func eventName(method, fullPath string) string {
	if name, ok := dashboardEvents[method+" "+fullPath]; ok {
		return name
	}
	// "/api/v1/billing/plans" -> "api_v1_billing_plans"
	name := strings.TrimPrefix(fullPath, "/")
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, ":", "")
}

// PosthogMiddleware creates a Gin middleware handler that tracks successful
// authenticated API calls with PostHog.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		email, exists := GetUserEmailFromContext(c)
		if !exists {
			return
		}

		// FullPath is empty for unmatched routes
		if c.FullPath() == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status_code": c.Writer.Status(),
		}
		if id := c.Param("transactionID"); id != "" {
			props["transaction_id"] = id
		}
		if month := c.Query("month"); month != "" {
			props["month"] = month
		}

		posthogClient.Enqueue(email, eventName(c.Request.Method, c.FullPath()), props)
	}
}
