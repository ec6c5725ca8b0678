package permissions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/respond"
)

// RespondDenied writes the 403 upgrade prompt for err and reports whether
// err was a denial.
func RespondDenied(c *gin.Context, err error) bool {
	var denied *DeniedError
	if !errors.As(err, &denied) {
		return false
	}
	metrics.IncPermissionDenied(string(denied.Action))
	respond.Error(c, http.StatusForbidden, "upgrade_required", "Upgrade your plan to use this feature", gin.H{
		"action":        denied.Action,
		"currentLevel":  denied.Level,
		"requiredLevel": denied.Required,
	})
	return true
}
