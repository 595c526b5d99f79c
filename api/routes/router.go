package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simkidd/dwec-winery-storefront/api/controllers"
	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	cartsvc "github.com/simkidd/dwec-winery-storefront/internal/cart"
	catalogsvc "github.com/simkidd/dwec-winery-storefront/internal/catalog"
	checkoutsvc "github.com/simkidd/dwec-winery-storefront/internal/checkout"
	deliverysvc "github.com/simkidd/dwec-winery-storefront/internal/delivery"
	favoritesvc "github.com/simkidd/dwec-winery-storefront/internal/favorites"
	ordersvc "github.com/simkidd/dwec-winery-storefront/internal/orders"
	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

// Services carries everything the router wires into handlers.
type Services struct {
	Registrar middleware.ViewerRegistrar
	Sessions  middleware.SessionResolver
	Evictor   controllers.TokenEvictor
	Cart      cartsvc.Service
	Favorites *favoritesvc.Synchronizer
	Checkout  *checkoutsvc.Orchestrator
	Catalog   *catalogsvc.Service
	Delivery  *deliverysvc.Service
	Orders    *ordersvc.History
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	pingers map[string]controllers.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.CORS(cfg.CORS),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Viewer(svcs.Registrar, logg),
			middleware.Session(svcs.Sessions, logg),
		)

		r.Get("/session", controllers.SessionShow(logg))
		r.Post("/session/logout", controllers.SessionLogout(svcs.Evictor, logg))

		r.Get("/products", controllers.ProductsList(svcs.Catalog, logg))
		r.Get("/products/{slug}", controllers.ProductShow(svcs.Catalog, logg))
		r.Get("/categories", controllers.CategoriesList(svcs.Catalog, logg))
		r.Get("/ads", controllers.AdsList(svcs.Catalog, logg))
		r.Get("/delivery-areas", controllers.DeliveryAreasList(svcs.Delivery, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Delete("/items/{lineID}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Put("/items/{lineID}/quantity", controllers.CartSetQuantity(svcs.Cart, logg))
			r.Post("/items/{lineID}/increment", controllers.CartIncrement(svcs.Cart, logg))
			r.Post("/items/{lineID}/decrement", controllers.CartDecrement(svcs.Cart, logg))
		})

		r.Route("/favourites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(svcs.Favorites, logg))
			r.Post("/toggle", controllers.FavoritesToggle(svcs.Favorites, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutBegin(svcs.Checkout, logg))
			r.Get("/{attemptID}", controllers.CheckoutShow(svcs.Checkout, logg))
			r.Post("/{attemptID}/delivery", controllers.CheckoutSelectDelivery(svcs.Checkout, logg))
			r.Post("/{attemptID}/payment", controllers.CheckoutInitializePayment(svcs.Checkout, logg))
			r.Post("/{attemptID}/callback", controllers.CheckoutCallback(svcs.Checkout, cfg.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.OrderShow(svcs.Orders, logg))
		})
	})

	return r
}
