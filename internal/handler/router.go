package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"lablend/internal/handler/api"
	"lablend/internal/handler/middleware"
	"lablend/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	loanHandler *api.LoanHandler,
	debtHandler *api.DebtHandler,
	scanHandler *api.ScanHandler,
	materialHandler *api.MaterialHandler,
	jobsHandler *api.JobsHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, loanHandler, debtHandler, scanHandler, materialHandler, jobsHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	loanHandler *api.LoanHandler,
	debtHandler *api.DebtHandler,
	scanHandler *api.ScanHandler,
	materialHandler *api.MaterialHandler,
	jobsHandler *api.JobsHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)
	engine.GET("/jobs/run", jobsHandler.Run)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		loans := apiGroup.Group("/loans")
		{
			addRoutes(loans, []route{
				{Method: http.MethodPost, Path: "", Handler: loanHandler.Create},
				{Method: http.MethodGet, Path: "", Handler: loanHandler.List},
				{Method: http.MethodGet, Path: "/:id", Handler: loanHandler.Get},
			})
		}

		debts := apiGroup.Group("/debts")
		{
			addRoutes(debts, []route{
				{Method: http.MethodGet, Path: "", Handler: debtHandler.List},
				{Method: http.MethodGet, Path: "/:id", Handler: debtHandler.Get},
				{Method: http.MethodPost, Path: "/:id/classify", Handler: debtHandler.Classify},
			})
		}

		// every physical handover happens at the counter, under an admin scan
		scan := apiGroup.Group("/scan")
		scan.Use(authMiddleware.RequireAdmin())
		{
			addRoutes(scan, []route{
				{Method: http.MethodPost, Path: "", Handler: scanHandler.Scan},
			})
		}

		materials := apiGroup.Group("/materials")
		{
			addRoutes(materials, []route{
				{Method: http.MethodGet, Path: "", Handler: materialHandler.List},
				{Method: http.MethodGet, Path: "/:id", Handler: materialHandler.Get},
				{Method: http.MethodPost, Path: "", Handler: materialHandler.Register, Mw: []gin.HandlerFunc{authMiddleware.RequireAdmin()}},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
