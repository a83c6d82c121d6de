package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/Nandeesh-nh/lan-chat/internal/config"
	"github.com/Nandeesh-nh/lan-chat/internal/database"
	"github.com/Nandeesh-nh/lan-chat/internal/handlers"
	"github.com/Nandeesh-nh/lan-chat/internal/middleware"
	"github.com/Nandeesh-nh/lan-chat/internal/routes"
	"github.com/Nandeesh-nh/lan-chat/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	fs := afero.NewOsFs()

	// Credential store: Postgres when configured, local JSON file otherwise
	var creds services.CredentialStore
	if cfg.PostgresURI != "" {
		log.Printf("Connecting to PostgreSQL...")
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			log.Fatal("Failed to connect to PostgreSQL:", err)
		}
		defer database.DisconnectPostgres()
		creds = services.NewPostgresCredentialStore(database.PostgresDB)
	} else {
		creds = services.NewFileCredentialStore(fs, cfg.UsersFile)
		log.Printf("✅ Credential file: %s", cfg.UsersFile)
	}

	// File storage
	files, err := services.NewFileStore(fs, cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to prepare upload directory:", err)
	}
	log.Printf("✅ File storage: %s/", cfg.UploadDir)

	// In-memory chat state; a restart clears history and online status
	presence := services.NewPresenceTracker()
	messages := services.NewMessageStore()

	// Background sweep for inactive users
	services.StartPresenceSweeper(presence, messages, cfg.SweepInterval, cfg.PresenceTimeout)
	log.Printf("✅ Presence sweeper started (every %s, timeout %s)", cfg.SweepInterval, cfg.PresenceTimeout)

	h := handlers.New(creds, presence, messages, files)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → GlobalRateLimit → AuthRateLimit
	// Non-production: Redis-based rate limit only, and only when Redis is up
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + auth rate limiting)")
	} else if cfg.RedisURI != "" {
		if err := database.ConnectRedis(cfg.RedisURI); err != nil {
			log.Printf("Warning: Redis unavailable, rate limiting disabled: %v", err)
		} else {
			defer database.DisconnectRedis()
			r.Use(middleware.RateLimitMiddleware)
		}
	}

	// Health check (no rate limit concerns on a LAN)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r, h)

	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /auth/register")
	log.Println("  POST /auth/login")
	log.Println("  GET  /users")
	log.Println("  POST /heartbeat")
	log.Println("  GET  /messages")
	log.Println("  POST /messages")
	log.Println("  PUT  /messages/{id}")
	log.Println("  DELETE /messages/{id}")
	log.Println("  POST /messages/mark-delivered")
	log.Println("  POST /upload")
	log.Println("  GET  /download/{storageRef}")
	log.Println("  POST /logout")

	log.Printf("🚀 LAN chat server running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
