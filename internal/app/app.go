package app

import (
	"fleetdesk-backend/internal/auth"
	"fleetdesk-backend/internal/blob"
	"fleetdesk-backend/internal/config"
	"fleetdesk-backend/internal/constants"
	"fleetdesk-backend/internal/database"
	"fleetdesk-backend/internal/documents"
	"fleetdesk-backend/internal/expenses"
	"fleetdesk-backend/internal/health"
	"fleetdesk-backend/internal/materials"
	"fleetdesk-backend/internal/middleware"
	"fleetdesk-backend/internal/penalties"
	"fleetdesk-backend/internal/reports"
	"fleetdesk-backend/internal/teams"
	"fleetdesk-backend/internal/users"
	"fleetdesk-backend/internal/vehicles"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// gormPinger adapts *gorm.DB to the health DBPinger interface.
type gormPinger struct{ db *gorm.DB }

func (p gormPinger) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route
// registration. The DB and Redis handles are returned for startup checks.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Session (Redis); the client doubles for the health marker
	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if errDB = database.AutoMigrate(db); errDB != nil {
			return nil, nil, nil, errDB
		}
	}

	// --- Routes (no auth) ---
	var pinger health.DBPinger
	if db != nil {
		pinger = gormPinger{db: db}
	}
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		DB:             pinger,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", healthHandlers.Reset)
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/errors", healthHandlers.Errors)

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth + tenant required) ---
	if db != nil && rdb != nil {
		guard := []fiber.Handler{middleware.RequireAuth(), middleware.RequireTenant()}

		// Vehicles
		vehicleHandlers := &vehicles.Handlers{Service: &vehicles.Service{DB: db}}
		vehicleGroup := app.Group("/api/v1/vehicles", guard...)
		vehicleGroup.Post("/create-vehicle", middleware.AuthorizePermission(constants.ManageVehicles), vehicleHandlers.Create)
		vehicleGroup.Put("/update-vehicle/:id", middleware.AuthorizePermission(constants.ManageVehicles), vehicleHandlers.Update)
		vehicleGroup.Get("/get-vehicle/:id", middleware.AuthorizePermission(constants.ViewData), vehicleHandlers.Get)
		vehicleGroup.Get("/get-all-vehicles", middleware.AuthorizePermission(constants.ViewData), vehicleHandlers.List)
		vehicleGroup.Delete("/delete-vehicle/:id", middleware.AuthorizePermission(constants.ManageVehicles), vehicleHandlers.Delete)
		vehicleGroup.Post("/assign-vehicle", middleware.AuthorizePermission(constants.AssignVehicles), vehicleHandlers.Assign)
		vehicleGroup.Post("/end-assignment/:id", middleware.AuthorizePermission(constants.AssignVehicles), vehicleHandlers.EndAssignment)
		vehicleGroup.Get("/get-assignments", middleware.AuthorizePermission(constants.ViewData), vehicleHandlers.ListAssignments)

		// Teams
		teamHandlers := &teams.Handlers{Service: &teams.Service{DB: db}}
		teamGroup := app.Group("/api/v1/teams", guard...)
		teamGroup.Post("/create-team", middleware.AuthorizePermission(constants.ManageTeams), teamHandlers.Create)
		teamGroup.Put("/update-team/:id", middleware.AuthorizePermission(constants.ManageTeams), teamHandlers.Update)
		teamGroup.Get("/get-team/:id", middleware.AuthorizePermission(constants.ViewData), teamHandlers.Get)
		teamGroup.Get("/get-all-teams", middleware.AuthorizePermission(constants.ViewData), teamHandlers.List)
		teamGroup.Delete("/delete-team/:id", middleware.AuthorizePermission(constants.ManageTeams), teamHandlers.Delete)

		// Users
		userHandlers := &users.Handlers{Service: &users.Service{DB: db}}
		userGroup := app.Group("/api/v1/users", guard...)
		userGroup.Post("/create-user", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.Create)
		userGroup.Put("/update-user/:id", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.Update)
		userGroup.Get("/get-user/:id", middleware.AuthorizePermission(constants.ViewData), userHandlers.Get)
		userGroup.Get("/get-all-users", middleware.AuthorizePermission(constants.ViewData), userHandlers.List)
		userGroup.Delete("/delete-user/:id", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.Delete)

		// Materials + assignment ledger
		materialHandlers := &materials.Handlers{Service: &materials.Service{DB: db}}
		materialGroup := app.Group("/api/v1/materials", guard...)
		materialGroup.Post("/create-material", middleware.AuthorizePermission(constants.ManageMaterials), materialHandlers.CreateMaterial)
		materialGroup.Put("/update-material/:id", middleware.AuthorizePermission(constants.ManageMaterials), materialHandlers.UpdateMaterial)
		materialGroup.Get("/get-material/:id", middleware.AuthorizePermission(constants.ViewData), materialHandlers.GetMaterial)
		materialGroup.Get("/get-all-materials", middleware.AuthorizePermission(constants.ViewData), materialHandlers.ListMaterials)
		materialGroup.Delete("/delete-material/:id", middleware.AuthorizePermission(constants.ManageMaterials), materialHandlers.DeleteMaterial)
		materialGroup.Post("/issue", middleware.AuthorizePermission(constants.IssueMaterials), materialHandlers.Issue)
		materialGroup.Post("/mark-for-return/:id", middleware.AuthorizePermission(constants.ReturnMaterials), materialHandlers.MarkForReturn)
		materialGroup.Post("/confirm-return/:id", middleware.AuthorizePermission(constants.ReturnMaterials), materialHandlers.ConfirmReturn)
		materialGroup.Post("/direct-return/:id", middleware.AuthorizePermission(constants.ReturnMaterials), materialHandlers.DirectReturn)
		materialGroup.Post("/direct-break/:id", middleware.AuthorizePermission(constants.ReturnMaterials), materialHandlers.DirectBreak)
		materialGroup.Get("/get-assignments", middleware.AuthorizePermission(constants.ViewData), materialHandlers.ListAssignments)
		materialGroup.Get("/get-events/:id", middleware.AuthorizePermission(constants.ViewData), materialHandlers.ListEvents)

		// Penalties
		penaltyHandlers := &penalties.Handlers{Service: &penalties.Service{DB: db}}
		penaltyGroup := app.Group("/api/v1/penalties", guard...)
		penaltyGroup.Post("/create-penalty", middleware.AuthorizePermission(constants.ManagePenalties), penaltyHandlers.Create)
		penaltyGroup.Post("/pay-penalty/:id", middleware.AuthorizePermission(constants.PayPenalties), penaltyHandlers.MarkPaid)
		penaltyGroup.Post("/attach-receipt/:id", middleware.AuthorizePermission(constants.ManagePenalties), penaltyHandlers.AttachReceipt)
		penaltyGroup.Delete("/delete-penalty/:id", middleware.AuthorizePermission(constants.ManagePenalties), penaltyHandlers.Delete)
		penaltyGroup.Get("/get-penalty/:id", middleware.AuthorizePermission(constants.ViewData), penaltyHandlers.Get)
		penaltyGroup.Get("/get-all-penalties", middleware.AuthorizePermission(constants.ViewData), penaltyHandlers.List)
		penaltyGroup.Get("/get-summary", middleware.AuthorizePermission(constants.ViewData), penaltyHandlers.Summary)

		// Documents
		documentHandlers := &documents.Handlers{Service: &documents.Service{DB: db}}
		documentGroup := app.Group("/api/v1/documents", guard...)
		documentGroup.Post("/create-vehicle-document/:vehicleId", middleware.AuthorizePermission(constants.ManageDocuments), documentHandlers.CreateVehicleDocument)
		documentGroup.Post("/create-user-document/:userId", middleware.AuthorizePermission(constants.ManageDocuments), documentHandlers.CreateUserDocument)
		documentGroup.Get("/get-vehicle-documents/:vehicleId", middleware.AuthorizePermission(constants.ViewData), documentHandlers.ListVehicleDocuments)
		documentGroup.Get("/get-user-documents/:userId", middleware.AuthorizePermission(constants.ViewData), documentHandlers.ListUserDocuments)
		documentGroup.Get("/get-expiring-documents", middleware.AuthorizePermission(constants.ViewData), documentHandlers.ListExpiring)
		documentGroup.Post("/attach-vehicle-document-file/:id", middleware.AuthorizePermission(constants.ManageDocuments), documentHandlers.AttachVehicleDocumentFile)
		documentGroup.Post("/attach-user-document-file/:id", middleware.AuthorizePermission(constants.ManageDocuments), documentHandlers.AttachUserDocumentFile)
		documentGroup.Delete("/delete-vehicle-document/:id", middleware.AuthorizePermission(constants.ManageDocuments), documentHandlers.DeleteVehicleDocument)
		documentGroup.Delete("/delete-user-document/:id", middleware.AuthorizePermission(constants.ManageDocuments), documentHandlers.DeleteUserDocument)

		// Expenses + maintenance
		expenseHandlers := &expenses.Handlers{Service: &expenses.Service{DB: db}}
		expenseGroup := app.Group("/api/v1/expenses", guard...)
		expenseGroup.Post("/create-expense", middleware.AuthorizePermission(constants.ManageExpenses), expenseHandlers.CreateExpense)
		expenseGroup.Put("/update-expense/:id", middleware.AuthorizePermission(constants.ManageExpenses), expenseHandlers.UpdateExpense)
		expenseGroup.Get("/get-expense/:id", middleware.AuthorizePermission(constants.ViewData), expenseHandlers.GetExpense)
		expenseGroup.Get("/get-all-expenses", middleware.AuthorizePermission(constants.ViewData), expenseHandlers.ListExpenses)
		expenseGroup.Delete("/delete-expense/:id", middleware.AuthorizePermission(constants.ManageExpenses), expenseHandlers.DeleteExpense)
		expenseGroup.Post("/create-maintenance", middleware.AuthorizePermission(constants.ManageExpenses), expenseHandlers.CreateMaintenance)
		expenseGroup.Get("/get-vehicle-maintenance/:vehicleId", middleware.AuthorizePermission(constants.ViewData), expenseHandlers.ListMaintenance)
		expenseGroup.Delete("/delete-maintenance/:id", middleware.AuthorizePermission(constants.ManageExpenses), expenseHandlers.DeleteMaintenance)

		// Reports
		reportHandlers := &reports.Handlers{Service: &reports.Service{DB: db}}
		reportGroup := app.Group("/api/v1/reports", guard...)
		reportGroup.Get("/expenses-by-vehicle", middleware.AuthorizePermission(constants.ExportReports), reportHandlers.ExpensesByVehicle)
		reportGroup.Get("/expenses-by-team", middleware.AuthorizePermission(constants.ExportReports), reportHandlers.ExpensesByTeam)
		reportGroup.Get("/expenses-by-category", middleware.AuthorizePermission(constants.ExportReports), reportHandlers.ExpensesByCategory)
		reportGroup.Get("/damage-charges-by-team", middleware.AuthorizePermission(constants.ExportReports), reportHandlers.DamageChargesByTeam)

		// Blob store (multipart upload + download)
		store, err := blob.NewStore(cfg.BlobDir)
		if err != nil {
			return nil, nil, nil, err
		}
		blobHandlers := &blob.Handlers{Store: store}
		blobGroup := app.Group("/api/v1/files", guard...)
		blobGroup.Post("/:category", blobHandlers.Upload)
		blobGroup.Get("/*", blobHandlers.Download)
	}

	return app, db, rdb, nil
}
