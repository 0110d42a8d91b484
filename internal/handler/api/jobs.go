package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"lablend/internal/handler/httperr"
	"lablend/internal/pkg/config"
	"lablend/internal/pkg/errs"
	"lablend/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

var errBadJobsSecret = errs.New("jobs secret mismatch")

// JobsHandler exposes the maintenance sweeps to the external trigger
// (cron, Cloud Scheduler). Authentication is a shared secret, not a user
// session: the caller is a machine.
type JobsHandler struct {
	cmds   commands.JobCommands
	secret string
}

func NewJobsHandler(cmds commands.JobCommands, cfg config.JobsConfig) *JobsHandler {
	return &JobsHandler{cmds: cmds, secret: cfg.Secret}
}

// @Summary Run maintenance sweeps
// @Description Expire due loans, issue return tokens, convert expired loans to debts, prompt unclassified debts
// @Tags jobs
// @Produce json
// @Param cycle query int false "Run counter from the scheduler"
// @Success 200 {object} commands.RunReport
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} commands.RunReport
// @Router /jobs/run [get]
func (h *JobsHandler) Run(c *gin.Context) {
	if !h.authorized(c.GetHeader("Authorization")) {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadJobsSecret, "Unauthorized", nil)
		return
	}

	cycle := 0
	if raw := c.Query("cycle"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			if err == nil {
				err = errs.New("negative cycle")
			}
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cycle", nil)
			return
		}
		cycle = parsed
	}

	report, err := h.cmds.Run(c.Request.Context(), cycle)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	// The report is returned either way; the status tells the scheduler
	// whether the run needs attention.
	status := http.StatusOK
	if report.Failed() {
		status = http.StatusInternalServerError
	}
	c.JSON(status, report)
}

func (h *JobsHandler) authorized(authHeader string) bool {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}
	presented := strings.TrimSpace(authHeader[len("Bearer "):])
	return subtle.ConstantTimeCompare([]byte(presented), []byte(h.secret)) == 1
}
