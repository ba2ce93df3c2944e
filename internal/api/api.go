// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/api/handlers"
	"github.com/andresuchdata/b2b-portal/internal/api/middleware"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Workspace *service.Workspace
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "x-auth-token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil || services.Workspace == nil {
		return router
	}
	ws := services.Workspace
	apiGroup := router.Group("/api/v1")

	sessionHandler := handlers.NewSessionHandler(ws)
	sessionGroup := apiGroup.Group("/session")
	{
		sessionGroup.GET("", sessionHandler.Get)
		sessionGroup.POST("/login", sessionHandler.Login)
		sessionGroup.POST("/logout", sessionHandler.Logout)
		sessionGroup.POST("/register/:kind", sessionHandler.Register)
	}

	authed := apiGroup.Group("", middleware.RequireSession(func() bool {
		return ws.Session().Authenticated
	}))
	entity := func() string {
		if u := ws.Session().User; u != nil {
			return u.EntityType
		}
		return ""
	}
	companyOnly := middleware.RequireRole(domain.EntityCompany, entity)
	distributorOnly := middleware.RequireRole(domain.EntityDistributor, entity)

	authed.PUT("/profile", sessionHandler.UpdateProfile)

	catalogHandler := handlers.NewCatalogHandler(ws)
	{
		authed.POST("/views/:name", catalogHandler.EnterView)
		authed.DELETE("/views/:name", catalogHandler.LeaveView)
		authed.GET("/catalog", catalogHandler.Search)

		draftGroup := authed.Group("/draft", distributorOnly)
		draftGroup.GET("", catalogHandler.GetDraft)
		draftGroup.PUT("/items/:productId", catalogHandler.SetQuantity)
		draftGroup.POST("/submit", catalogHandler.SubmitDraft)

		authed.POST("/products/:id/stock", companyOnly, catalogHandler.UpdateStock)

		inventoryGroup := authed.Group("/inventory")
		inventoryGroup.GET("", catalogHandler.Inventory)
		inventoryGroup.GET("/low-stock", catalogHandler.LowStock)
		inventoryGroup.PUT("/:productId", distributorOnly, catalogHandler.SetOnHand)
	}

	importHandler := handlers.NewImportHandler(ws)
	importGroup := authed.Group("/imports", companyOnly)
	{
		importGroup.POST("", importHandler.Upload)
		importGroup.GET("", importHandler.Recent)
		importGroup.GET("/:id", importHandler.Status)
		importGroup.DELETE("", importHandler.Cancel)
	}

	orderHandler := handlers.NewOrderHandler(ws)
	orderGroup := authed.Group("/orders")
	{
		orderGroup.GET("", orderHandler.List)
		orderGroup.PUT("/:id/status", companyOnly, orderHandler.SetStatus)
		orderGroup.PUT("/:id/advance", companyOnly, orderHandler.Advance)
		orderGroup.PUT("/:id/pay", distributorOnly, orderHandler.Pay)
		orderGroup.PUT("/:id/verify-payment", companyOnly, orderHandler.VerifyPayment)
	}

	salesHandler := handlers.NewSalesHandler(ws)
	salesGroup := authed.Group("/sales", distributorOnly)
	{
		salesGroup.GET("/rows", salesHandler.Rows)
		salesGroup.POST("/rows", salesHandler.AddRow)
		salesGroup.PUT("/rows/:index", salesHandler.UpdateRow)
		salesGroup.DELETE("/rows/:index", salesHandler.RemoveRow)
		salesGroup.POST("/submit", salesHandler.Submit)
		salesGroup.POST("/report", salesHandler.Report)
	}

	accountHandler := handlers.NewAccountHandler(ws)
	{
		authed.GET("/analytics/company", companyOnly, accountHandler.CompanyAnalytics)
		authed.GET("/analytics/calendar/:distributorId", companyOnly, accountHandler.Calendar)
		authed.GET("/distributors", companyOnly, accountHandler.Distributors)
		authed.PUT("/distributors/:id/status", companyOnly, accountHandler.SetDistributorStatus)
		authed.POST("/shops", distributorOnly, accountHandler.OnboardShop)
		authed.GET("/employees", companyOnly, accountHandler.Employees)
		authed.POST("/employees", companyOnly, accountHandler.AddEmployee)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
