package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/formguard"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

// FormInstanceHeader identifies one open form on the dashboard.
const FormInstanceHeader = "X-Form-Instance"

// FormGuard rejects a submission while another one of the same form instance is running.
// Requests without the header pass through. A guard backend failure lets the request through.
func FormGuard(guard formguard.Guard, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		instance := c.GetHeader(FormInstanceHeader)
		if guard == nil || instance == "" {
			c.Next()
			return
		}

		release, err := guard.Acquire(c.Request.Context(), instance)
		switch {
		case errors.Is(err, formguard.ErrBusy):
			response.Form(c, http.StatusConflict, dto.FormState{
				Success: false,
				Error:   appErrors.ErrSubmissionInProgress.Message,
				Code:    appErrors.ErrSubmissionInProgress.Code,
			})
			c.Abort()
			return
		case err != nil:
			logger.Warn("form guard unavailable", zap.String("instance", instance), zap.Error(err))
			c.Next()
			return
		}

		defer release()
		c.Next()
	}
}
