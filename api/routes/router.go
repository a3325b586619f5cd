package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foodger/foodger-backend/api/controllers"
	"github.com/foodger/foodger-backend/api/middleware"
	budgetsvc "github.com/foodger/foodger-backend/internal/budget"
	cartsvc "github.com/foodger/foodger-backend/internal/cart"
	catalogsvc "github.com/foodger/foodger-backend/internal/catalog"
	checkoutsvc "github.com/foodger/foodger-backend/internal/checkout"
	expsvc "github.com/foodger/foodger-backend/internal/expenditures"
	"github.com/foodger/foodger-backend/pkg/config"
	"github.com/foodger/foodger-backend/pkg/db"
	"github.com/foodger/foodger-backend/pkg/logger"
	"github.com/foodger/foodger-backend/pkg/metrics"
	"github.com/foodger/foodger-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	Metrics *metrics.HTTPMetrics

	Catalog      catalogsvc.Service
	Cart         cartsvc.Service
	Budget       budgetsvc.Service
	Checkout     checkoutsvc.Service
	Expenditures expsvc.Service

	MetricsHandler http.Handler
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.Metrics(d.Metrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.DB, d.Redis))
	})

	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.Config.JWT, d.Logger))
		r.Use(middleware.Idempotency(d.Redis, d.Logger))

		r.Route("/merchants", func(r chi.Router) {
			r.Get("/", controllers.MerchantsList(d.Catalog, d.Logger))
			r.Get("/{merchantID}", controllers.MerchantGet(d.Catalog, d.Logger))
			r.Get("/{merchantID}/menu", controllers.MerchantMenu(d.Catalog, d.Logger))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(d.Cart, d.Logger))
			r.Delete("/", controllers.CartClear(d.Cart, d.Metrics, d.Logger))
			r.Get("/projection", controllers.CartProjection(d.Checkout, d.Logger))
			r.Post("/items", controllers.CartAddItem(d.Cart, d.Metrics, d.Logger))
			r.Patch("/items/{itemID}", controllers.CartUpdateItem(d.Cart, d.Metrics, d.Logger))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(d.Cart, d.Metrics, d.Logger))
		})

		r.Post("/checkout", controllers.Checkout(d.Checkout, d.Metrics, d.Logger))

		r.Route("/budgets", func(r chi.Router) {
			r.Route("/monthly", func(r chi.Router) {
				r.Get("/", controllers.MonthlyBudgetGet(d.Budget, d.Logger))
				r.Put("/", controllers.MonthlyBudgetUpsert(d.Budget, d.Logger))
				r.Get("/summary", controllers.MonthlySummaryGet(d.Budget, d.Logger))
			})
			r.Route("/daily", func(r chi.Router) {
				r.Get("/", controllers.DailyBudgetGet(d.Budget, d.Logger))
				r.Put("/{date}", controllers.DailyBudgetUpsert(d.Budget, d.Logger))
				r.Post("/bulk", controllers.DailyBudgetBulkSet(d.Budget, d.Logger))
			})
		})

		r.Route("/expenditures", func(r chi.Router) {
			r.Get("/", controllers.ExpendituresList(d.Expenditures, d.Logger))
			r.Get("/{expenditureID}", controllers.ExpenditureGet(d.Expenditures, d.Logger))
		})
	})

	return r
}
