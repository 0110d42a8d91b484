package api

import (
	"errors"
	"net/http"

	reqdto "lablend/internal/handler/dto/request"
	resdto "lablend/internal/handler/dto/response"
	"lablend/internal/handler/httperr"
	"lablend/internal/handler/middleware"
	"lablend/internal/infra"
	"lablend/internal/pkg/errs"
	"lablend/internal/usecase/commands"
	"lablend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errMissingUserContext = errs.New("missing user context")

type LoanHandler struct {
	cmds commands.LoanCommands
	q    queries.LoanQueries
}

func NewLoanHandler(cmds commands.LoanCommands, q queries.LoanQueries) *LoanHandler {
	return &LoanHandler{cmds: cmds, q: q}
}

func actorFromContext(c *gin.Context) (queries.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return queries.Actor{}, false
	}
	return queries.Actor{ID: userID, Admin: middleware.IsAdmin(c)}, true
}

// @Summary Request a loan
// @Description Register a pending loan for a material; returns the activation scan URL
// @Tags loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateLoanRequest true "Loan request"
// @Success 201 {object} resdto.CreateLoanResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /loans [post]
func (h *LoanHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUserContext, "Internal server error", nil)
		return
	}

	var req reqdto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.CreateLoan(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrMaterialNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Material not found", nil)
		case errors.Is(err, commands.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid loan request", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Header("Location", "/api/loans/"+result.LoanID.String())
	c.JSON(http.StatusCreated, resdto.FromCreateLoanResult(result))
}

// @Summary Get loan
// @Description Get a loan by ID; students only see their own
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} resdto.LoanResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid loan ID format", nil)
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
			httperr.AbortWithError(c, http.StatusNotFound, err, "Loan not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromLoanView(view))
}

// @Summary List loans
// @Description List the caller's loans; admins may pass student_id
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student ID (admin only)"
// @Success 200 {array} resdto.LoanResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /loans [get]
func (h *LoanHandler) List(c *gin.Context) {
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

	response := make([]*resdto.LoanResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromLoanView(view)
	}
	c.JSON(http.StatusOK, response)
}
