package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/example/campusmart/internal/auth"
	"github.com/example/campusmart/internal/config"
	"github.com/example/campusmart/internal/handlers"
	"github.com/example/campusmart/internal/middleware"
	"github.com/example/campusmart/internal/orders"
	"github.com/example/campusmart/internal/otp"
	"github.com/example/campusmart/internal/ratelimit"
	"github.com/example/campusmart/internal/services"
	"github.com/example/campusmart/internal/storage"
	"github.com/example/campusmart/internal/verification"
)

// Register wires up all HTTP routes. With REDIS_URL set, the code store and
// rate counter live in redis so multiple instances share them; otherwise
// both stay in-process.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, log zerolog.Logger) error {
	var codeStore otp.Store = otp.NewMemoryStore()
	var counter ratelimit.Counter = ratelimit.NewMemoryCounter()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		codeStore = otp.NewRedisStore(rdb)
		counter = ratelimit.NewRedisCounter(rdb)
	}

	codes := otp.NewService(codeStore, cfg.OTPExpires, log)
	codes.RegisterSender(otp.ChannelEmail,
		services.NewMailerService(cfg.MailerAPIKey, cfg.MailerFromName, cfg.MailerFromEmail, log))
	codes.RegisterSender(otp.ChannelWhatsApp,
		services.NewWhatsAppService(cfg.WhatsAppAPIURL, cfg.WhatsAppAPIToken, log))

	files, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	authService := auth.NewService(db, codes, cfg.AdminInviteToken)
	gate := verification.NewGate(db)
	lifecycle := orders.NewLifecycle(db, gate, log)

	authHandler := handlers.NewAuthHandler(authService, codes, cfg)
	verificationHandler := handlers.NewVerificationHandler(db, gate, files)
	orderHandler := handlers.NewOrderHandler(db, lifecycle)
	profileHandler := handlers.NewProfileHandler(db)

	api := app.Group("/api")

	// Auth routes sit behind the shared limiter.
	limiter := middleware.RateLimit(counter, middleware.RateLimitConfig{
		Max:    cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
	}, log)

	authGroup := api.Group("/auth", limiter)
	authGroup.Post("/send-otp", authHandler.SendOTP)
	authGroup.Post("/send-whatsapp-otp", authHandler.SendWhatsAppOTP)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/seller/register", authHandler.RegisterSeller)
	authGroup.Post("/admin/register", authHandler.RegisterAdmin)
	authGroup.Post("/login", authHandler.Login)

	// Protected routes.
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Post("/upload/verification", verificationHandler.UploadVerification)
	protected.Post("/upload/buyer-verification", verificationHandler.UploadBuyerVerification)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Put("/orders/:id/buyer-confirmation", orderHandler.BuyerConfirmation)
	protected.Put("/orders/:id/delivery-status", orderHandler.DeliveryStatus)

	// Admin routes.
	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.Get("/verifications", verificationHandler.ListPendingVerifications)
	admin.Put("/verifications/:userId", verificationHandler.ReviewVerification)
	admin.Get("/orders", orderHandler.ListAllOrders)
	admin.Put("/orders/:id/status", orderHandler.ConfirmOrder)
	admin.Post("/orders/:id/payout", orderHandler.ReleasePayout)

	return nil
}
