package routes

import (
	"net/http"

	"agroadmin/audit"
	"agroadmin/auth"
	"agroadmin/charges"
	"agroadmin/dashboard"
	"agroadmin/messages"
	"agroadmin/middleware"
	"agroadmin/orders"
	"agroadmin/products"
	"agroadmin/ratelim"
	"agroadmin/session"
	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
)

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}

func AddAuthRoutes(router *httprouter.Router, svc *auth.Service, sessions *session.Manager, rateLimiter *ratelim.RateLimiter) {
	router.POST("/auth/login", rateLimiter.Limit(svc.HandleLogin))
	router.POST("/auth/signup", rateLimiter.Limit(svc.HandleSignup))
	router.POST("/auth/otp", rateLimiter.Limit(svc.HandleRequestOTP))
	router.POST("/auth/otp/verify", rateLimiter.Limit(svc.HandleVerifyOTP))
	router.POST("/auth/reset-password", rateLimiter.Limit(svc.HandleResetPassword))

	router.GET("/auth/profile", middleware.Authenticate(sessions, svc.HandleProfile))
	router.POST("/auth/logout", middleware.Authenticate(sessions, svc.HandleLogout))
}

func AddDashboardRoutes(router *httprouter.Router, svc *dashboard.Service, sessions *session.Manager) {
	router.GET("/admin/dashboard/recent-orders", middleware.RequireAdmin(sessions, svc.GetRecentOrders))
}

func AddProductRoutes(router *httprouter.Router, svc *products.Service, sessions *session.Manager) {
	router.GET("/admin/products", middleware.RequireAdmin(sessions, svc.GetProducts))
	router.POST("/admin/products", middleware.RequireAdmin(sessions, svc.CreateProduct))
	router.PUT("/admin/products/:id", middleware.RequireAdmin(sessions, svc.UpdateProduct))
	router.DELETE("/admin/products/:id", middleware.RequireAdmin(sessions, svc.DeleteProduct))
	router.POST("/admin/products/:id/next", middleware.RequireAdmin(sessions, svc.NextImage()))
	router.POST("/admin/products/:id/prev", middleware.RequireAdmin(sessions, svc.PrevImage()))

	router.GET("/admin/inventory/export/:format", middleware.RequireAdmin(sessions, svc.ExportInventory))

	router.POST("/admin/uploads", middleware.RequireAdmin(sessions, svc.StageImages))
	router.GET("/admin/uploads", middleware.RequireAdmin(sessions, svc.ListStaged))
	router.GET("/admin/uploads/:uid/preview", middleware.RequireAdmin(sessions, svc.PreviewImage))
	router.DELETE("/admin/uploads/:uid", middleware.RequireAdmin(sessions, svc.UnstageImage))
}

func AddOrderRoutes(router *httprouter.Router, svc *orders.Service, sessions *session.Manager) {
	router.GET("/admin/orders", middleware.RequireAdmin(sessions, svc.GetOrders))
	router.GET("/admin/orders/:id", middleware.RequireAdmin(sessions, svc.GetOrder))
	router.PUT("/admin/orders/:id/status", middleware.RequireAdmin(sessions, svc.UpdateStatus))
	router.GET("/admin/orders/:id/slip", middleware.RequireAdmin(sessions, svc.PrintSlip))
}

func AddChargeRoutes(router *httprouter.Router, svc *charges.Service, sessions *session.Manager) {
	router.GET("/admin/charges", middleware.RequireAdmin(sessions, svc.GetCharges))
	router.PUT("/admin/charges", middleware.RequireAdmin(sessions, svc.UpdateCharges))
}

func AddMessageRoutes(router *httprouter.Router, svc *messages.Service, sessions *session.Manager) {
	router.GET("/admin/messages", middleware.RequireAdmin(sessions, svc.GetMessages))
}

// AddAuditRoutes exposes the audit trail when the recorder can be read back.
func AddAuditRoutes(router *httprouter.Router, rec audit.Recorder, sessions *session.Manager) {
	lister, ok := rec.(audit.Lister)
	if !ok {
		return
	}
	router.GET("/admin/audit", middleware.RequireAdmin(sessions, audit.RecentHandler(lister)))
}
