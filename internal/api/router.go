package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Messano/brain-hr-hub/internal/account"
	"github.com/Messano/brain-hr-hub/internal/api/handlers"
	"github.com/Messano/brain-hr-hub/internal/api/middleware"
	"github.com/Messano/brain-hr-hub/internal/audit"
	"github.com/Messano/brain-hr-hub/internal/auth"
	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/config"
	"github.com/Messano/brain-hr-hub/internal/contract"
	"github.com/Messano/brain-hr-hub/internal/database"
	"github.com/Messano/brain-hr-hub/internal/directory"
	"github.com/Messano/brain-hr-hub/internal/export"
	"github.com/Messano/brain-hr-hub/internal/invoice"
	"github.com/Messano/brain-hr-hub/internal/obs"
	"github.com/Messano/brain-hr-hub/internal/payroll"
	"github.com/Messano/brain-hr-hub/internal/planning"
	"github.com/Messano/brain-hr-hub/internal/queue"
	"github.com/Messano/brain-hr-hub/internal/training"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	queue *queue.Client
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, qc *queue.Client) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		queue: qc,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(obs.Instrument)

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health and metrics (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	// Shared infrastructure
	c := cache.NewCache(rt.redis)
	auditSvc := audit.NewService(rt.db)
	recorder := audit.NewRecorder(rt.queue, auditSvc)
	permSource := auth.NewCachedPermissionSource(auth.NewPGPermissionSource(rt.db), c)
	resolver := auth.NewResolver(permSource)

	// Domain services
	clientSvc := directory.NewClientService(rt.db, c, recorder)
	personnelSvc := directory.NewPersonnelService(rt.db, c, recorder)
	contractSvc := contract.NewService(rt.db, c, recorder)
	invoiceSvc := invoice.NewService(rt.db, c, recorder)
	payrollSvc := payroll.NewService(rt.db, c, recorder)
	trainingSvc := training.NewService(rt.db, c, recorder)
	planningSvc := planning.NewService(rt.db, c, recorder)
	accountSvc := account.NewService(account.NewPGStore(rt.db), c, recorder, resolver, permSource)
	exportSvc := export.NewService(database.StdDB(rt.db))

	jwt := auth.NewJWTMiddleware(rt.cfg.Auth.JWTSecret, accountSvc)
	guard := func(module string, action auth.Action) func(http.Handler) http.Handler {
		return auth.RequirePermission(resolver, module, action)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwt.Authenticate)

		clientH := handlers.NewClientHandler(clientSvc)
		r.Route("/clients", func(r chi.Router) {
			r.With(guard(auth.ModuleClients, auth.ActionView)).Get("/", clientH.List)
			r.With(guard(auth.ModuleClients, auth.ActionView)).Get("/{id}", clientH.Get)
			r.With(guard(auth.ModuleClients, auth.ActionCreate)).Post("/", clientH.Create)
			r.With(guard(auth.ModuleClients, auth.ActionEdit)).Put("/{id}", clientH.Update)
			r.With(guard(auth.ModuleClients, auth.ActionDelete)).Delete("/{id}", clientH.Delete)
		})

		personnelH := handlers.NewPersonnelHandler(personnelSvc)
		r.Route("/personnel", func(r chi.Router) {
			r.With(guard(auth.ModulePersonnel, auth.ActionView)).Get("/", personnelH.List)
			r.With(guard(auth.ModulePersonnel, auth.ActionView)).Get("/{id}", personnelH.Get)
			r.With(guard(auth.ModulePersonnel, auth.ActionCreate)).Post("/", personnelH.Create)
			r.With(guard(auth.ModulePersonnel, auth.ActionEdit)).Put("/{id}", personnelH.Update)
			r.With(guard(auth.ModulePersonnel, auth.ActionDelete)).Delete("/{id}", personnelH.Delete)
		})

		contractH := handlers.NewContractHandler(contractSvc, rt.queue)
		r.Route("/contracts", func(r chi.Router) {
			r.With(guard(auth.ModuleContracts, auth.ActionView)).Get("/", contractH.List)
			r.With(guard(auth.ModuleContracts, auth.ActionView)).Get("/{id}", contractH.Get)
			r.With(guard(auth.ModuleContracts, auth.ActionView)).Get("/{id}/history", contractH.History)
			r.With(guard(auth.ModuleContracts, auth.ActionCreate)).Post("/", contractH.Create)
			r.With(guard(auth.ModuleContracts, auth.ActionEdit)).Post("/expire-sweep", contractH.ExpireSweep)
			r.With(guard(auth.ModuleContracts, auth.ActionEdit)).Put("/{id}", contractH.Update)
			r.With(guard(auth.ModuleContracts, auth.ActionDelete)).Delete("/{id}", contractH.Delete)
		})

		invoiceH := handlers.NewInvoiceHandler(invoiceSvc)
		r.Route("/invoices", func(r chi.Router) {
			r.With(guard(auth.ModuleInvoices, auth.ActionView)).Get("/", invoiceH.List)
			r.With(guard(auth.ModuleInvoices, auth.ActionView)).Get("/{id}", invoiceH.Get)
			r.With(guard(auth.ModuleInvoices, auth.ActionView)).Get("/{id}/lines", invoiceH.Lines)
			r.With(guard(auth.ModuleInvoices, auth.ActionView)).Post("/pdf", invoiceH.GeneratePDF)
			r.With(guard(auth.ModuleInvoices, auth.ActionCreate)).Post("/", invoiceH.Create)
			r.With(guard(auth.ModuleInvoices, auth.ActionEdit)).Put("/{id}", invoiceH.Update)
			r.With(guard(auth.ModuleInvoices, auth.ActionDelete)).Delete("/{id}", invoiceH.Delete)
		})

		payrollH := handlers.NewPayrollHandler(payrollSvc)
		r.Route("/payrolls", func(r chi.Router) {
			r.With(guard(auth.ModulePayroll, auth.ActionView)).Get("/", payrollH.List)
			r.With(guard(auth.ModulePayroll, auth.ActionView)).Get("/{id}", payrollH.Get)
			r.With(guard(auth.ModulePayroll, auth.ActionCreate)).Post("/", payrollH.Create)
			r.With(guard(auth.ModulePayroll, auth.ActionEdit)).Put("/{id}", payrollH.Update)
			r.With(guard(auth.ModulePayroll, auth.ActionDelete)).Delete("/{id}", payrollH.Delete)
		})

		trainingH := handlers.NewTrainingHandler(trainingSvc)
		r.Route("/trainings", func(r chi.Router) {
			r.With(guard(auth.ModuleTrainings, auth.ActionView)).Get("/", trainingH.List)
			r.With(guard(auth.ModuleTrainings, auth.ActionView)).Get("/{id}", trainingH.Get)
			r.With(guard(auth.ModuleTrainings, auth.ActionView)).Get("/{id}/participants", trainingH.Participants)
			r.With(guard(auth.ModuleTrainings, auth.ActionCreate)).Post("/", trainingH.Create)
			r.With(guard(auth.ModuleTrainings, auth.ActionEdit)).Post("/{id}/participants", trainingH.AddParticipant)
			r.With(guard(auth.ModuleTrainings, auth.ActionEdit)).Put("/{id}", trainingH.Update)
			r.With(guard(auth.ModuleTrainings, auth.ActionEdit)).Delete("/{id}/participants/{participantID}", trainingH.RemoveParticipant)
			r.With(guard(auth.ModuleTrainings, auth.ActionDelete)).Delete("/{id}", trainingH.Delete)
		})

		eventH := handlers.NewEventHandler(planningSvc)
		r.Route("/events", func(r chi.Router) {
			r.With(guard(auth.ModulePlanning, auth.ActionView)).Get("/", eventH.List)
			r.With(guard(auth.ModulePlanning, auth.ActionView)).Get("/{id}", eventH.Get)
			r.With(guard(auth.ModulePlanning, auth.ActionCreate)).Post("/", eventH.Create)
			r.With(guard(auth.ModulePlanning, auth.ActionEdit)).Put("/{id}", eventH.Update)
			r.With(guard(auth.ModulePlanning, auth.ActionDelete)).Delete("/{id}", eventH.Delete)
		})

		userH := handlers.NewUserHandler(accountSvc)
		r.Route("/users", func(r chi.Router) {
			r.With(guard(auth.ModuleUsers, auth.ActionView)).Get("/", userH.List)
			r.With(guard(auth.ModuleUsers, auth.ActionView)).Get("/{id}", userH.Get)
			r.With(guard(auth.ModuleUsers, auth.ActionCreate)).Post("/", userH.Create)
			r.With(guard(auth.ModuleUsers, auth.ActionEdit)).Put("/{id}", userH.Update)
			r.With(guard(auth.ModuleUsers, auth.ActionDelete)).Delete("/{id}", userH.Delete)
		})

		permH := handlers.NewPermissionHandler(accountSvc, permSource)
		r.Get("/me/permissions", permH.Me)
		r.Route("/permissions", func(r chi.Router) {
			r.With(guard(auth.ModuleUsers, auth.ActionView)).Get("/", permH.ListForRole)
			r.With(guard(auth.ModuleUsers, auth.ActionEdit)).Put("/", permH.Set)
		})

		auditH := handlers.NewAuditHandler(auditSvc)
		r.With(guard(auth.ModuleAudit, auth.ActionView)).Get("/audit", auditH.List)

		exportH := handlers.NewExportHandler(exportSvc)
		r.Route("/export", func(r chi.Router) {
			r.With(guard(auth.ModuleExport, auth.ActionView)).Get("/tables", exportH.Tables)
			r.With(guard(auth.ModuleExport, auth.ActionView)).Post("/", exportH.Run)
		})
	})

	return r
}
