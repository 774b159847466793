package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/bitumen-api/internal/application/auth"
	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/application/dashboard"
	"github.com/jhoicas/bitumen-api/internal/application/permission"
	"github.com/jhoicas/bitumen-api/internal/application/report"
	"github.com/jhoicas/bitumen-api/internal/application/tallysync"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/navigation"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/bitumen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/bitumen-api/internal/interfaces/http"
	"github.com/jhoicas/bitumen-api/internal/interfaces/ws"
	"github.com/jhoicas/bitumen-api/pkg/config"
	"github.com/jhoicas/bitumen-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// stores repositorios de cualquiera de los dos backends.
type stores struct {
	Users        repository.UserRepository
	Sessions     repository.SessionRepository
	Permissions  repository.PermissionRepository
	Clients      repository.ClientRepository
	Orders       repository.OrderRepository
	Tasks        repository.TaskRepository
	Payments     repository.PaymentRepository
	FollowUps    repository.FollowUpRepository
	TourAdvances repository.TourAdvanceRepository
	EWayBills    repository.EWayBillRepository
	Dashboard    repository.DashboardRepository
	Tx           crm.PaymentTxRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		App:   cfg.App.Name,
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var st stores
	switch cfg.DB.Driver {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		r := memory.NewStore().Repos()
		st = stores{
			Users: r.Users, Sessions: r.Sessions, Permissions: r.Permissions,
			Clients: r.Clients, Orders: r.Orders, Tasks: r.Tasks, Payments: r.Payments,
			FollowUps: r.FollowUps, TourAdvances: r.TourAdvances, EWayBills: r.EWayBills,
			Dashboard: r.Dashboard, Tx: r.Tx,
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(cfg.DB, log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		reg.MustRegister(postgres.NewPoolCollector(pool))
		r := postgres.NewRepositories(pool)
		st = stores{
			Users: r.Users, Sessions: r.Sessions, Permissions: r.Permissions,
			Clients: r.Clients, Orders: r.Orders, Tasks: r.Tasks, Payments: r.Payments,
			FollowUps: r.FollowUps, TourAdvances: r.TourAdvances, EWayBills: r.EWayBills,
			Dashboard: r.Dashboard, Tx: r.Tx,
		}
	}

	resolver := access.NewResolver(st.Permissions)
	authUC := auth.NewAuthUseCase(st.Users, st.Sessions, st.Permissions, auth.Config{
		SessionTTL: cfg.Session.TTL,
	})
	permissionUC := permission.NewPermissionUseCase(st.Users, st.Permissions, resolver)
	services := crm.NewServices(crm.Deps{
		Gate:         resolver,
		Users:        st.Users,
		Sessions:     st.Sessions,
		Permissions:  st.Permissions,
		Clients:      st.Clients,
		Orders:       st.Orders,
		Tasks:        st.Tasks,
		Payments:     st.Payments,
		FollowUps:    st.FollowUps,
		TourAdvances: st.TourAdvances,
		EWayBills:    st.EWayBills,
		PaymentTx:    st.Tx,
	})

	menu, err := navigation.DefaultMenu()
	if err != nil {
		log.Fatal().Err(err).Msg("menú de navegación")
	}

	// Puente con el agente de Tally
	registry := tallysync.NewRegistry(tallysync.Config{
		StatusTimeout: cfg.Sync.StatusTimeout,
		EvictTimeout:  cfg.Sync.EvictTimeout,
		SweepInterval: cfg.Sync.SweepInterval,
	}, log).WithMetrics(tallysync.NewMetrics(reg))
	bridge := tallysync.NewBridge(registry, services.Clients, resolver, log)
	if cfg.Sync.AgentSecret == "" {
		log.Warn().Msg("SYNC_AGENT_SECRET vacío: endpoints de agente deshabilitados")
	}

	hub := ws.NewHub(log)
	registry.OnChange(hub.PublishStatus)
	go registry.Run(ctx)
	go hub.Run(ctx)

	dashboardUC := dashboard.NewDashboardUseCase(resolver, st.Dashboard, registry)
	reportUC := report.NewReportUseCase(resolver, services, infrapdf.NewMarotoReportGenerator("Bitumen Company"))

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         log,
		Metrics:     httpRouter.NewHTTPMetrics(reg),
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Bitumen Company API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Auth:        authUC,
		Permissions: permissionUC,
		Resolver:    resolver,
		Menu:        menu,
		Services:    services,
		Dashboard:   dashboardUC,
		Bridge:      bridge,
		Reports:     reportUC,
		Hub:         hub,
		Gatherer:    reg,
		Cookie: httpRouter.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
		AgentSecret: cfg.Sync.AgentSecret,
		AgentIssuer: cfg.Sync.AgentIssuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
