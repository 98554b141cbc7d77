package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-optics-pos/internal/ai"
	"go-optics-pos/internal/auth"
	"go-optics-pos/internal/config"
	"go-optics-pos/internal/database"
	"go-optics-pos/internal/events"
	"go-optics-pos/internal/handlers"
	"go-optics-pos/internal/middleware"
	"go-optics-pos/internal/notify"
	"go-optics-pos/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in production")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	// money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if cfg.SeedDemoData {
		if err := database.SeedDemoData(db); err != nil {
			log.Fatal("Failed to seed demo data: ", err)
		}
	}

	authenticator, err := auth.NewAuthenticator(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal("Failed to set up login: ", err)
	}

	bus := events.NewBus()
	h := &handlers.Handler{
		Orders:   services.NewOrderService(db, bus),
		Clients:  services.NewClientService(db),
		Products: services.NewProductService(db),
		Costs:    services.NewCostService(db),
		Ledger:   services.NewLedgerService(db),
		Finance:  services.NewFinanceService(db),
		Auth:     authenticator,
	}

	// Bring the ledger up to date with orders saved while we were down
	if res, err := h.Ledger.Sync(context.Background()); err != nil {
		log.Printf("Initial ledger sync failed: %v", err)
	} else {
		log.Printf("Ledger synced: +%d ~%d -%d rows", res.Added, res.Updated, res.Removed)
	}
	h.Ledger.Subscribe(bus)

	if cfg.RabbitMQURL != "" {
		pub, err := notify.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("Order change fanout disabled: %v", err)
		} else {
			notifier := notify.New(pub, 256)
			notifier.Subscribe(bus)
			defer notifier.Close()
			log.Printf("Publishing order changes to exchange %s", notify.Exchange)
		}
	}

	if cfg.GeminiAPIKey != "" {
		h.Agent = ai.NewAgent(cfg.GeminiAPIKey, ai.Shop{
			Products: h.Products,
			Clients:  h.Clients,
			Ledger:   h.Ledger,
			Finance:  h.Finance,
		})
	} else {
		log.Println("GEMINI_API_KEY not set, assistant disabled")
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	h.Register(r)

	// Serve the built frontend when it is deployed next to the binary
	if _, err := os.Stat("./web/index.html"); err == nil {
		r.Static("/assets", "./web/assets")
		r.NoRoute(func(c *gin.Context) {
			c.File("./web/index.html")
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("Server starting on " + cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: ", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
