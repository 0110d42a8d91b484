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

type MaterialHandler struct {
	cmds commands.MaterialCommands
	q    queries.MaterialQueries
}

func NewMaterialHandler(cmds commands.MaterialCommands, q queries.MaterialQueries) *MaterialHandler {
	return &MaterialHandler{cmds: cmds, q: q}
}

// @Summary Register material
// @Description Add a material to the catalog and seed its stock counter
// @Tags materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RegisterMaterialRequest true "Material"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /materials [post]
func (h *MaterialHandler) Register(c *gin.Context) {
	var req reqdto.RegisterMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	id, err := h.cmds.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrDuplicateMaterial):
			httperr.AbortWithError(c, http.StatusConflict, err, "Material already registered", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Header("Location", "/api/materials/"+id.String())
	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

// @Summary Get material
// @Description Get one catalog entry with its live availability
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 200 {object} resdto.MaterialResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /materials/{id} [get]
func (h *MaterialHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid material ID format", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Material not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromMaterialView(view))
}

// @Summary List materials
// @Description List the catalog with live availability
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.MaterialResponse
// @Router /materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	views, err := h.q.List(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.MaterialResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromMaterialView(view)
	}
	c.JSON(http.StatusOK, response)
}
