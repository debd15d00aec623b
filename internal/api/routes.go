// routes.go - Route registration helpers
package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Optimizer Optimizer
	Jobs      AnalysisJobs
	Version   string
	Logger    *slog.Logger
	// ContactRate is the number of contact submissions allowed per second
	// per client IP. Zero disables the limiter.
	ContactRate  float64
	ContactBurst int
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Optimize OptimizeHandler
	Analyze  AnalyzeHandler
	Stream   AnalysisStreamHandler
	Contact  ContactHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Health:   NewHealthHandler(deps.Version),
		Optimize: NewOptimizeHandler(deps.Optimizer, logger),
		Analyze:  NewAnalyzeHandler(deps.Jobs, logger),
		Stream:   NewStreamHandler(deps.Jobs, logger),
		Contact:  NewContactHandler(logger),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, deps *Dependencies) {
	g := e.Group("/api")
	g.GET("/health", handlers.Health.HandleHealth)

	g.POST("/seo-optimize", handlers.Optimize.HandleOptimize)

	g.POST("/analyze-project", handlers.Analyze.HandleAnalyze)
	g.POST("/analyze-project/jobs", handlers.Analyze.HandleStartAnalysis)
	g.GET("/analyze-project/jobs/:id", handlers.Analyze.HandleGetAnalysis)
	g.GET("/ws/analysis/:id", handlers.Stream.HandleAnalysisStream)

	var contactMiddleware []echo.MiddlewareFunc
	if deps.ContactRate > 0 {
		contactMiddleware = append(contactMiddleware, contactRateLimiter(deps.ContactRate, deps.ContactBurst))
	}
	g.POST("/contact", handlers.Contact.HandleContact, contactMiddleware...)
}

func contactRateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	if burst <= 0 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(perSecond),
			Burst: burst,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return &APIError{Status: http.StatusForbidden, Code: CodeValidation, Message: "unable to identify client"}
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return &APIError{
				Status:  http.StatusTooManyRequests,
				Code:    CodeRateLimited,
				Message: "Too many contact requests, please try again later",
			}
		},
	})
}

// SetupMiddleware installs the error handler shared by all routes
func SetupMiddleware(e *echo.Echo, logger *slog.Logger) {
	e.HTTPErrorHandler = ErrorHandler(logger)
}
