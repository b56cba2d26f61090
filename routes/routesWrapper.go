package routes

import (
	"agroadmin/apiclient"
	"agroadmin/audit"
	"agroadmin/auth"
	"agroadmin/charges"
	"agroadmin/config"
	"agroadmin/dashboard"
	"agroadmin/messages"
	"agroadmin/orders"
	"agroadmin/products"
	"agroadmin/ratelim"
	"agroadmin/session"

	"github.com/julienschmidt/httprouter"
)

// Deps are the shared pieces every page is built from.
type Deps struct {
	Config   config.Config
	API      *apiclient.Client
	Sessions *session.Manager
	Audit    audit.Recorder
	Limiter  *ratelim.RateLimiter
}

// RoutesWrapper builds every page service and registers its routes.
func RoutesWrapper(router *httprouter.Router, d Deps) {
	router.GET("/health", Index)

	AddAuthRoutes(router, auth.NewService(d.API, d.Sessions, d.Audit, d.Config.ResetTimeout), d.Sessions, d.Limiter)
	AddDashboardRoutes(router, dashboard.NewService(d.API, d.Config.RecentOrdersLimit, d.Sessions), d.Sessions)
	AddProductRoutes(router, products.NewService(d.API, d.Audit, d.Sessions), d.Sessions)
	AddOrderRoutes(router, orders.NewService(d.API, d.Audit, d.Sessions), d.Sessions)
	AddChargeRoutes(router, charges.NewService(d.API, d.Audit, d.Sessions), d.Sessions)
	AddMessageRoutes(router, messages.NewService(d.API, d.Sessions), d.Sessions)
	AddAuditRoutes(router, d.Audit, d.Sessions)
}
