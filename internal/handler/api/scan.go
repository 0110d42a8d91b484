package api

import (
	"errors"
	"net/http"

	reqdto "lablend/internal/handler/dto/request"
	resdto "lablend/internal/handler/dto/response"
	"lablend/internal/handler/httperr"
	"lablend/internal/handler/middleware"
	"lablend/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type ScanHandler struct {
	cmds commands.ScanCommands
}

func NewScanHandler(cmds commands.ScanCommands) *ScanHandler {
	return &ScanHandler{cmds: cmds}
}

// @Summary Process a scan
// @Description Validate a scanned value and execute the transition its token authorizes
// @Tags scan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ScanRequest true "Scanned value"
// @Success 200 {object} resdto.ScanResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Router /scan [post]
func (h *ScanHandler) Scan(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUserContext, "Internal server error", nil)
		return
	}

	var req reqdto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.Scan(c.Request.Context(), req.Value, adminID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrTokenNotFound), errors.Is(err, commands.ErrRecordNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Unknown scan value", nil)
		case errors.Is(err, commands.ErrTokenConsumed):
			httperr.AbortWithError(c, http.StatusConflict, err, "Token already used", nil)
		case errors.Is(err, commands.ErrTokenExpired):
			httperr.AbortWithError(c, http.StatusGone, err, "Token expired", nil)
		case errors.Is(err, commands.ErrInsufficientStock):
			httperr.AbortWithError(c, http.StatusConflict, err, "Insufficient stock", nil)
		case errors.Is(err, commands.ErrTransitionConflict):
			httperr.AbortWithError(c, http.StatusConflict, err, "Conflicting transition", nil)
		case errors.Is(err, commands.ErrWrongResolution):
			httperr.AbortWithError(c, http.StatusConflict, err, "Resolution not allowed for this debt", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromScanResult(result))
}
