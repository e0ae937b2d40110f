package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk-backend/api/controllers"
	"github.com/fleetdesk/fleetdesk-backend/api/middleware"
	"github.com/fleetdesk/fleetdesk-backend/internal/auth"
	"github.com/fleetdesk/fleetdesk-backend/internal/customers"
	"github.com/fleetdesk/fleetdesk-backend/internal/dispatch"
	"github.com/fleetdesk/fleetdesk-backend/internal/documents"
	"github.com/fleetdesk/fleetdesk-backend/internal/employees"
	"github.com/fleetdesk/fleetdesk-backend/internal/notifications"
	"github.com/fleetdesk/fleetdesk-backend/internal/orders"
	"github.com/fleetdesk/fleetdesk-backend/internal/reports"
	"github.com/fleetdesk/fleetdesk-backend/internal/units"
	"github.com/fleetdesk/fleetdesk-backend/internal/vehicles"
	"github.com/fleetdesk/fleetdesk-backend/pkg/auth/session"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/redis"
)

// RouterParams collects the wired services the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager session.AccessSessionChecker

	Auth          auth.Service
	Register      auth.RegisterService
	Admin         auth.AdminService
	Customers     customers.Service
	Vehicles      vehicles.Service
	Employees     employees.Service
	Units         units.Service
	Orders        orders.Service
	Documents     documents.Service
	Dispatch      dispatch.Service
	Reports       reports.Service
	Notifications notifications.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Register, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Get("/ping", controllers.PrivatePing())

		// mutations require dispatcher or admin; viewers stay read-only
		write := middleware.RequireWriteAccess(logg)

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(p.Customers, logg))
			r.Get("/{customerId}", controllers.CustomerGet(p.Customers, logg))
			r.With(write).Post("/", controllers.CustomerCreate(p.Customers, logg))
			r.With(write).Put("/{customerId}", controllers.CustomerUpdate(p.Customers, logg))
			r.With(write).Delete("/{customerId}", controllers.CustomerDelete(p.Customers, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(p.Vehicles, logg))
			r.Get("/{vehicleId}", controllers.VehicleGet(p.Vehicles, logg))
			r.With(write).Post("/", controllers.VehicleCreate(p.Vehicles, logg))
			r.With(write).Put("/{vehicleId}", controllers.VehicleUpdate(p.Vehicles, logg))
			r.With(write).Delete("/{vehicleId}", controllers.VehicleDelete(p.Vehicles, logg))
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", controllers.EmployeeList(p.Employees, logg))
			r.Get("/{employeeId}", controllers.EmployeeGet(p.Employees, logg))
			r.With(write).Post("/", controllers.EmployeeCreate(p.Employees, logg))
			r.With(write).Put("/{employeeId}", controllers.EmployeeUpdate(p.Employees, logg))
			r.With(write).Delete("/{employeeId}", controllers.EmployeeDelete(p.Employees, logg))
		})

		r.Route("/units", func(r chi.Router) {
			r.Get("/", controllers.UnitList(p.Units, logg))
			r.Get("/{unitId}", controllers.UnitGet(p.Units, logg))
			r.With(write).Put("/{unitId}", controllers.UnitUpdate(p.Units, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(p.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(p.Orders, logg))
			r.With(write).Post("/", controllers.OrderCreate(p.Orders, logg))
			r.With(write).Put("/{orderId}", controllers.OrderUpdate(p.Orders, logg))
			r.With(write).Delete("/{orderId}", controllers.OrderDelete(p.Orders, logg))

			r.Get("/{orderId}/documents", controllers.OrderDocumentList(p.Documents, logg))
			r.Get("/{orderId}/documents/{documentId}", controllers.OrderDocumentDownload(p.Documents, logg))
			r.With(write).Post("/{orderId}/documents", controllers.OrderDocumentUpload(p.Documents, logg))
		})

		r.Route("/dispatch", func(r chi.Router) {
			r.Get("/dashboard", controllers.DispatchDashboard(p.Dispatch, logg))
			r.Get("/track/{orderId}", controllers.DispatchTrack(p.Dispatch, logg))
			r.Get("/vehicles/available", controllers.DispatchAvailableVehicles(p.Dispatch, logg))
			r.Get("/drivers/available", controllers.DispatchAvailableDrivers(p.Dispatch, logg))
			r.With(write).Post("/assign", controllers.DispatchAssign(p.Dispatch, logg))
			r.With(write).Patch("/{orderId}/status", controllers.DispatchUpdateStatus(p.Dispatch, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/orders", controllers.OrdersReport(p.Reports, logg))
			r.Get("/revenue", controllers.RevenueReport(p.Reports, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Get("/ping", controllers.AdminPing())
		r.Route("/users", func(r chi.Router) {
			r.Get("/pending", controllers.AdminPendingUsers(p.Admin, logg))
			r.Post("/{userId}/approve", controllers.AdminApproveUser(p.Admin, logg))
			r.Post("/{userId}/reject", controllers.AdminRejectUser(p.Admin, logg))
		})
	})

	return r
}
