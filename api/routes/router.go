package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/megano/shop-backend/api/controllers"
	"github.com/megano/shop-backend/api/middleware"
	authsvc "github.com/megano/shop-backend/internal/auth"
	basketsvc "github.com/megano/shop-backend/internal/basket"
	"github.com/megano/shop-backend/internal/catalog"
	ordersvc "github.com/megano/shop-backend/internal/orders"
	profilesvc "github.com/megano/shop-backend/internal/profile"
	reviewsvc "github.com/megano/shop-backend/internal/reviews"
	"github.com/megano/shop-backend/pkg/auth/session"
	"github.com/megano/shop-backend/pkg/config"
	"github.com/megano/shop-backend/pkg/logger"
	"github.com/megano/shop-backend/pkg/metrics"
	pkgredis "github.com/megano/shop-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          *pkgredis.Client
	Sessions       session.Checker
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger

	Auth    authsvc.Service
	Catalog catalog.Service
	Reviews reviewsvc.Service
	Basket  basketsvc.Service
	Orders  ordersvc.Service
	Profile profilesvc.Service
}

// NewRouter wires middleware and controllers into the public HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(deps.HTTPMetrics),
	)

	signInPolicy := middleware.NewAuthRateLimitPolicy(
		"sign-in",
		cfg.AuthRateLimit.SignInWindow,
		cfg.AuthRateLimit.SignInIPLimit,
		cfg.AuthRateLimit.SignInUserLimit,
	)
	signUpPolicy := middleware.NewAuthRateLimitPolicy(
		"sign-up",
		cfg.AuthRateLimit.SignUpWindow,
		cfg.AuthRateLimit.SignUpIPLimit,
		cfg.AuthRateLimit.SignUpUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signInPolicy, deps.Redis, logg)).
			Post("/sign-in", controllers.SignIn(deps.Auth, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(signUpPolicy, deps.Redis, logg)).
			Post("/sign-up", controllers.SignUp(deps.Auth, cfg.JWT, logg))

		r.Get("/catalog", controllers.CatalogList(deps.Catalog, logg))
		r.Get("/categories", controllers.Categories(deps.Catalog, logg))
		r.Get("/tags", controllers.Tags(deps.Catalog, logg))
		r.Get("/sales", controllers.CatalogSales(deps.Catalog, logg))
		r.Get("/banners", controllers.CatalogBanners(deps.Catalog, logg))
		r.Get("/products/popular", controllers.CatalogPopular(deps.Catalog, logg))
		r.Get("/products/limited", controllers.CatalogLimited(deps.Catalog, logg))
		r.Get("/product/{id}", controllers.ProductDetail(deps.Catalog, logg))
		r.Get("/product/{id}/reviews", controllers.ProductReviews(deps.Reviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Post("/sign-out", controllers.SignOut(deps.Auth, logg))

			r.Post("/product/{id}/reviews", controllers.ProductReviewCreate(deps.Reviews, logg))

			r.Route("/basket", func(r chi.Router) {
				r.Get("/", controllers.BasketGet(deps.Basket, logg))
				r.Post("/", controllers.BasketAdd(deps.Basket, logg))
				r.Delete("/", controllers.BasketRemove(deps.Basket, logg))
			})

			r.Get("/order", controllers.OrdersList(deps.Orders, logg))
			r.Post("/order", controllers.OrderCreate(deps.Orders, logg))
			r.Route("/order/{id}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(deps.Orders, logg))
				r.Post("/", controllers.OrderFinalize(deps.Orders, logg))
			})
			r.Post("/payment/{id}", controllers.PaymentConfirm(deps.Orders, logg))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.ProfileGet(deps.Profile, logg))
				r.Post("/", controllers.ProfileUpdate(deps.Profile, logg))
				r.Post("/password", controllers.PasswordChange(deps.Profile, logg))
			})
		})
	})

	return r
}
