package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/bitumen-api/internal/application/auth"
	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/application/dashboard"
	"github.com/jhoicas/bitumen-api/internal/application/permission"
	"github.com/jhoicas/bitumen-api/internal/application/report"
	"github.com/jhoicas/bitumen-api/internal/application/tallysync"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/navigation"
	"github.com/jhoicas/bitumen-api/internal/interfaces/ws"
	"github.com/jhoicas/bitumen-api/pkg/logger"
)

// AppConfig opciones de la aplicación Fiber.
type AppConfig struct {
	Name        string
	CORSOrigins string
	Log         *logger.Logger
	Metrics     *HTTPMetrics
}

// NewApp crea la aplicación Fiber con el manejador de errores, recover, CORS y log de peticiones.
func NewApp(cfg AppConfig) *fiber.App {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	log := cfg.Log.Named("http")
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(RequestLogger(log, cfg.Metrics))
	app.Use(recover.New())
	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowCredentials: true,
		}))
	}
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Auth        *auth.AuthUseCase
	Permissions *permission.PermissionUseCase
	Resolver    *access.Resolver
	Menu        navigation.Menu
	Services    *crm.Services
	Dashboard   *dashboard.DashboardUseCase
	Bridge      *tallysync.Bridge
	Reports     *report.ReportUseCase
	Hub         *ws.Hub // opcional
	Gatherer    prometheus.Gatherer
	Cookie      CookieConfig
	AgentSecret string
	AgentIssuer string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", MetricsHandler(deps.Gatherer))
	}

	api := app.Group("/api")
	session := SessionMiddleware(deps.Auth, deps.Cookie.Name)

	// Auth
	authHandler := NewAuthHandler(deps.Auth, deps.Cookie)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", session, authHandler.Logout)
	authGroup.Get("/me", session, authHandler.Me)

	// Agente de Tally (JWT de agente, sin sesión)
	syncHandler := NewSyncHandler(deps.Bridge)
	// El middleware va por ruta: un Group("/sync", ...) también interceptaría /sync/status.
	agent := AgentMiddleware(deps.AgentSecret, deps.AgentIssuer)
	api.Post("/sync/heartbeat", agent, syncHandler.Heartbeat)
	api.Post("/sync/ledgers", agent, syncHandler.Ledgers)

	// Rutas protegidas (requieren sesión)
	protected := api.Group("", session)

	accessHandler := NewAccessHandler(deps.Permissions, deps.Menu, deps.Resolver)
	protected.Get("/permissions/me", accessHandler.MyPermissions)
	protected.Get("/navigation", accessHandler.Navigation)

	protected.Get("/dashboard/summary", NewDashboardHandler(deps.Dashboard).GetSummary)
	protected.Get("/sync/status", syncHandler.Status)

	svc := deps.Services
	// Las escrituras se autorizan antes de leer el cuerpo: sin permiso es 403 aunque el JSON sea inválido.
	need := func(module access.Module, action access.Action) fiber.Handler {
		return RequirePermission(module, action, deps.Resolver)
	}

	clients := NewClientHandler(svc.Clients)
	protected.Get("/clients", clients.List)
	protected.Post("/clients", need(access.ModuleClientManagement, access.ActionAdd), clients.Create)
	protected.Get("/clients/:id", clients.Get)
	protected.Put("/clients/:id", need(access.ModuleClientManagement, access.ActionEdit), clients.Update)
	protected.Delete("/clients/:id", clients.Delete)

	orders := NewOrderHandler(svc.Orders)
	protected.Get("/orders", orders.List)
	protected.Post("/orders", need(access.ModuleOrderWorkflow, access.ActionAdd), orders.Create)
	protected.Get("/orders/:id", orders.Get)
	protected.Put("/orders/:id", need(access.ModuleOrderWorkflow, access.ActionEdit), orders.Update)
	protected.Patch("/orders/:id/status", need(access.ModuleOrderWorkflow, access.ActionEdit), orders.UpdateStatus)
	protected.Delete("/orders/:id", orders.Delete)

	tasks := NewTaskHandler(svc.Tasks)
	protected.Get("/tasks", tasks.List)
	protected.Post("/tasks", need(access.ModuleTaskManagement, access.ActionAdd), tasks.Create)
	protected.Get("/tasks/:id", tasks.Get)
	protected.Put("/tasks/:id", need(access.ModuleTaskManagement, access.ActionEdit), tasks.Update)
	protected.Delete("/tasks/:id", tasks.Delete)

	payments := NewPaymentHandler(svc.Payments)
	protected.Get("/payments", payments.List)
	protected.Post("/payments", need(access.ModuleCreditPayments, access.ActionAdd), payments.Create)
	protected.Get("/payments/:id", payments.Get)
	protected.Put("/payments/:id", need(access.ModuleCreditPayments, access.ActionEdit), payments.Update)
	protected.Delete("/payments/:id", payments.Delete)

	followUps := NewFollowUpHandler(svc.FollowUps)
	protected.Get("/follow-ups", followUps.List)
	protected.Post("/follow-ups", need(access.ModuleFollowUps, access.ActionAdd), followUps.Create)
	protected.Get("/follow-ups/:id", followUps.Get)
	protected.Put("/follow-ups/:id", need(access.ModuleFollowUps, access.ActionEdit), followUps.Update)
	protected.Delete("/follow-ups/:id", followUps.Delete)

	tours := NewTourAdvanceHandler(svc.TourAdvances)
	protected.Get("/tour-advances", tours.List)
	protected.Post("/tour-advances", need(access.ModuleTourAdvances, access.ActionAdd), tours.Create)
	protected.Get("/tour-advances/:id", tours.Get)
	protected.Put("/tour-advances/:id", need(access.ModuleTourAdvances, access.ActionEdit), tours.Update)
	protected.Delete("/tour-advances/:id", tours.Delete)

	eway := NewEWayBillHandler(svc.EWayBills)
	protected.Get("/eway-bills", eway.List)
	protected.Post("/eway-bills", need(access.ModuleEWayBills, access.ActionAdd), eway.Create)
	protected.Get("/eway-bills/:id", eway.Get)
	protected.Put("/eway-bills/:id", need(access.ModuleEWayBills, access.ActionEdit), eway.Update)
	protected.Delete("/eway-bills/:id", eway.Delete)

	users := NewUserHandler(svc.Users)
	protected.Get("/users", users.List)
	protected.Post("/users", need(access.ModuleUserManagement, access.ActionAdd), users.Create)
	protected.Get("/users/:id", users.Get)
	protected.Put("/users/:id", need(access.ModuleUserManagement, access.ActionEdit), users.Update)
	protected.Delete("/users/:id", users.Delete)
	protected.Get("/users/:id/permissions", accessHandler.UserPermissions)
	protected.Put("/users/:id/permissions", need(access.ModuleUserManagement, access.ActionEdit), accessHandler.SetUserPermissions)

	if deps.Reports != nil {
		reports := NewReportHandler(deps.Reports)
		protected.Get("/reports/clients.csv", reports.ClientsCSV)
		protected.Get("/reports/clients.pdf", reports.ClientsPDF)
		protected.Get("/reports/payments.csv", reports.PaymentsCSV)
		protected.Get("/reports/payments.pdf", reports.PaymentsPDF)
		protected.Get("/reports/orders.csv", reports.OrdersCSV)
	}

	// WebSocket de estado de sincronización
	if deps.Hub != nil {
		app.Get("/ws/sync",
			ws.Upgrade(),
			session,
			RequirePermission(access.ModuleTallySync, access.ActionView, deps.Resolver),
			deps.Hub.Handler(deps.Bridge.Registry().Status),
		)
	}
}
