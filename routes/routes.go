package routes

import (
	"thaitour_go/controllers"
	"thaitour_go/handlers"
	"thaitour_go/middleware"
	"thaitour_go/services"
	"thaitour_go/services/websocket"
	"thaitour_go/storage"

	"github.com/gofiber/fiber/v2"
)

// Dependencies are the long lived services the HTTP layer needs
type Dependencies struct {
	Catalog   *services.CatalogService
	Schedules *services.ScheduleService
	Importer  *services.LegacyImportService
	Archive   *services.LogArchiveService
	Health    *services.HealthService
	Brochure  *services.BrochureService
	Storage   *storage.StorageService
	Line      *handlers.LineWebhookHandler
	Hub       *websocket.Hub
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, deps Dependencies) {
	var events services.EventPublisher
	if deps.Hub != nil {
		events = deps.Hub
	}
	notifier := &controllers.ChangeNotifier{Catalog: deps.Catalog, Events: events}

	// Initialize controllers
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	countryController := &controllers.CountryController{Notifier: notifier}
	tripController := &controllers.TripController{Notifier: notifier, Storage: deps.Storage}
	scheduleController := &controllers.ScheduleController{Notifier: notifier, Schedules: deps.Schedules}
	importController := &controllers.ScheduleImportController{Importer: deps.Importer}
	galleryController := &controllers.GalleryController{Notifier: notifier, Storage: deps.Storage}
	itineraryController := &controllers.ItineraryController{Notifier: notifier}
	faqController := &controllers.FAQController{Notifier: notifier}
	articleController := &controllers.ArticleController{Notifier: notifier, Storage: deps.Storage}
	publicController := &controllers.PublicController{Catalog: deps.Catalog, Brochure: deps.Brochure}
	logController := &controllers.LogController{Archive: deps.Archive}
	healthController := controllers.NewHealthController(deps.Health)

	// Health checks
	app.Get("/health", healthController.GetLiveness)
	app.Get("/health/details", healthController.GetHealthStatus)

	// LINE Official Account webhook
	if deps.Line != nil {
		app.Post("/line/webhook", deps.Line.Handle)
	}

	// API group
	api := app.Group("/api")

	// Public website routes (no authentication required)
	public := api.Group("/public")
	public.Get("/countries", publicController.GetCountries)
	public.Get("/trips", publicController.GetTrips)
	public.Get("/trips/:slug", publicController.GetTrip)
	public.Get("/trips/:slug/brochure.pdf", publicController.GetTripBrochure)
	public.Get("/gallery", publicController.GetGallery)
	public.Get("/articles", publicController.GetArticles)
	public.Get("/articles/:slug", publicController.GetArticle)
	public.Get("/faqs", publicController.GetFAQs)

	// Authentication routes
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)
	auth.Post("/logout", middleware.JWTMiddleware(), authController.Logout)

	// Profile routes (authenticated users)
	profile := api.Group("/profile", middleware.JWTMiddleware())
	profile.Get("/", authController.GetProfile)
	profile.Put("/", authController.UpdateProfile)
	profile.Put("/password", authController.ChangePassword)

	// User management (admin only)
	users := api.Group("/users", middleware.JWTMiddleware(), middleware.RequireAdmin())
	users.Get("/", userController.GetUsers)
	users.Post("/", userController.CreateUser)
	users.Put("/:id", userController.UpdateUser)
	users.Delete("/:id", userController.DeleteUser)

	// Back office content (editor or admin)
	admin := api.Group("/admin", middleware.JWTMiddleware(), middleware.RequireEditorOrAbove())

	countries := admin.Group("/countries")
	countries.Get("/", countryController.GetCountries)
	countries.Get("/:id", countryController.GetCountry)
	countries.Post("/", countryController.CreateCountry)
	countries.Put("/:id", countryController.UpdateCountry)
	countries.Delete("/:id", countryController.DeleteCountry)

	trips := admin.Group("/trips")
	trips.Get("/", tripController.GetTrips)
	trips.Get("/:id", tripController.GetTrip)
	trips.Post("/", tripController.CreateTrip)
	trips.Put("/:id", tripController.UpdateTrip)
	trips.Delete("/:id", tripController.DeleteTrip)
	trips.Post("/:id/cover", tripController.UploadCover)
	trips.Get("/:id/schedules", scheduleController.GetTripSchedules)
	trips.Post("/:id/schedules", scheduleController.CreateSchedule)
	trips.Get("/:id/itinerary", itineraryController.GetDays)
	trips.Post("/:id/itinerary", itineraryController.CreateDay)

	schedules := admin.Group("/schedules")
	schedules.Post("/parse", scheduleController.ParsePreview)
	schedules.Get("/:id", scheduleController.GetSchedule)
	schedules.Put("/:id", scheduleController.UpdateSchedule)
	schedules.Delete("/:id", scheduleController.DeleteSchedule)
	schedules.Patch("/:id/seats", scheduleController.AdjustSeats)

	admin.Post("/import/schedules", importController.Import)

	itinerary := admin.Group("/itinerary")
	itinerary.Put("/days/:id", itineraryController.UpdateDay)
	itinerary.Delete("/days/:id", itineraryController.DeleteDay)
	itinerary.Post("/days/:id/activities", itineraryController.CreateActivity)
	itinerary.Put("/activities/:id", itineraryController.UpdateActivity)
	itinerary.Delete("/activities/:id", itineraryController.DeleteActivity)

	gallery := admin.Group("/gallery")
	gallery.Get("/", galleryController.GetImages)
	gallery.Post("/", galleryController.UploadImage)
	gallery.Put("/:id", galleryController.UpdateImage)
	gallery.Patch("/:id/highlight", galleryController.ToggleHighlight)
	gallery.Delete("/:id", galleryController.DeleteImage)

	faqs := admin.Group("/faqs")
	faqs.Get("/", faqController.GetFAQs)
	faqs.Post("/", faqController.CreateFAQ)
	faqs.Put("/:id", faqController.UpdateFAQ)
	faqs.Delete("/:id", faqController.DeleteFAQ)

	articles := admin.Group("/articles")
	articles.Get("/", articleController.GetArticles)
	articles.Get("/:id", articleController.GetArticle)
	articles.Post("/", articleController.CreateArticle)
	articles.Put("/:id", articleController.UpdateArticle)
	articles.Patch("/:id/publish", articleController.TogglePublish)
	articles.Post("/:id/cover", articleController.UploadCover)
	articles.Delete("/:id", articleController.DeleteArticle)

	// Activity logs (admin only)
	logs := api.Group("/logs", middleware.JWTMiddleware(), middleware.RequireAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/stats", logController.GetLogStats)
	logs.Get("/export", logController.ExportLogs)
	logs.Post("/flush", logController.FlushCachedLogs)
	logs.Post("/archive", logController.ArchiveLogs)
	logs.Get("/archives", logController.GetArchives)
	logs.Get("/archives/:id/download", logController.DownloadArchive)
	logs.Get("/:id", logController.GetLog)

	// WebSocket routes
	if deps.Hub != nil {
		wsController := controllers.NewWebSocketController(deps.Hub)
		api.Get("/ws/stats", middleware.JWTMiddleware(), middleware.RequireAdmin(), wsController.GetWebSocketStats)
		app.Use("/ws", wsController.Upgrade)
		app.Get("/ws", wsController.WebSocketHandler())
	}
}

// SetupStaticRoutes configures static file serving
func SetupStaticRoutes(app *fiber.App) {
	app.Static("/", "./public")
}
