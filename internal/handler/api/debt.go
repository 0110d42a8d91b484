package api

import (
	"errors"
	"net/http"

	reqdto "lablend/internal/handler/dto/request"
	resdto "lablend/internal/handler/dto/response"
	"lablend/internal/handler/httperr"
	"lablend/internal/infra"
	"lablend/internal/usecase/commands"
	"lablend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DebtHandler struct {
	cmds commands.DebtCommands
	q    queries.DebtQueries
}

func NewDebtHandler(cmds commands.DebtCommands, q queries.DebtQueries) *DebtHandler {
	return &DebtHandler{cmds: cmds, q: q}
}

// @Summary Get debt
// @Description Get a debt by ID; students only see their own
// @Tags debts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Debt ID"
// @Success 200 {object} resdto.DebtResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /debts/{id} [get]
func (h *DebtHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid debt ID format", nil)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUserContext, "Internal server error", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrAccessDenied):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case infra.IsKind(err, infra.KindNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Debt not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromDebtView(view))
}

// @Summary List debts
// @Description List the caller's debts; admins may pass student_id
// @Tags debts
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student ID (admin only)"
// @Success 200 {array} resdto.DebtResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /debts [get]
func (h *DebtHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUserContext, "Internal server error", nil)
		return
	}

	studentID := actor.ID
	if raw := c.Query("student_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid student ID format", nil)
			return
		}
		studentID = parsed
	}

	views, err := h.q.ListByStudent(c.Request.Context(), actor, studentID)
	if err != nil {
		if errors.Is(err, queries.ErrAccessDenied) {
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.DebtResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromDebtView(view)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Classify debt
// @Description Record the one-time answer about what happened to the material
// @Tags debts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Debt ID"
// @Param request body reqdto.ClassifyDebtRequest true "Classification"
// @Success 200 {object} resdto.ClassifyDebtResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /debts/{id}/classify [post]
func (h *DebtHandler) Classify(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid debt ID format", nil)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUserContext, "Internal server error", nil)
		return
	}

	var req reqdto.ClassifyDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.Classify(c.Request.Context(), id, actor.ID, actor.Admin, req)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrDebtNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Debt not found", nil)
		case errors.Is(err, commands.ErrNotDebtOwner):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case errors.Is(err, commands.ErrDebtAlreadyClassified):
			httperr.AbortWithError(c, http.StatusConflict, err, "Debt already classified", nil)
		case errors.Is(err, commands.ErrDebtSettled):
			httperr.AbortWithError(c, http.StatusConflict, err, "Debt already settled", nil)
		case errors.Is(err, commands.ErrInvalidDebtKind):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid debt kind", nil)
		case errors.Is(err, commands.ErrInvalidPaymentChannel):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment channel", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromClassifyDebtResult(result))
}
