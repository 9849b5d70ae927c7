package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"campnest/internal/domain/shared/fault"
)

// respondError translates fault kinds to HTTP statuses. Anything untyped is
// a 500 with a generic body; the real error goes to the log only.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	kind := fault.KindOf(err)
	body := gin.H{"error": err.Error()}
	if code := fault.CodeOf(err); code != "" {
		body["code"] = code
	}
	switch kind {
	case fault.KindNotFound:
		c.JSON(http.StatusNotFound, body)
	case fault.KindForbidden:
		c.JSON(http.StatusForbidden, body)
	case fault.KindBadRequest:
		c.JSON(http.StatusBadRequest, body)
	case fault.KindConflict:
		c.JSON(http.StatusConflict, body)
	default:
		if logger != nil {
			logger.Error("request failed", "error", err, "path", c.FullPath())
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
