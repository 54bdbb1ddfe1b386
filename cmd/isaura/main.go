package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"google.golang.org/genai"

	"github.com/parch0n/Isaura/internal/client"
	"github.com/parch0n/Isaura/internal/config"
	"github.com/parch0n/Isaura/internal/pkg/encryption"
	"github.com/parch0n/Isaura/internal/pkg/mailer"
	"github.com/parch0n/Isaura/internal/pkg/utils"
	"github.com/parch0n/Isaura/internal/repository"
	"github.com/parch0n/Isaura/internal/restapi"
	"github.com/parch0n/Isaura/internal/service"
	"github.com/parch0n/Isaura/pkg/metrics"
)

func main() {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Bridge slog callers onto the zap core.
	slogHandler := zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{})
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(file)
		} else {
			log.Infof("Failed to log to file, using default stdout: %v", err)
		}
	}

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	encryptionKey, err := encryption.ParseKey(cfg.Wallets.EncryptionKey)
	if err != nil {
		zapLogger.Fatal("Invalid wallet encryption key", zap.Error(err))
	}

	db, err := repository.OpenDB(cfg.Database.Path)
	if err != nil {
		zapLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	zapLogger.Info("Database opened", zap.String("path", cfg.Database.Path))

	cleanup := time.Duration(cfg.Cache.CleanupIntervalMinutes) * time.Minute
	portfolioCache := cache.New(time.Duration(cfg.Portfolio.CacheTTLMinutes)*time.Minute, cleanup)
	strategyCache := cache.New(time.Duration(cfg.Strategies.CacheTTLMinutes)*time.Minute, cleanup)
	codeCache := cache.New(time.Duration(cfg.Auth.CodeTTLMinutes)*time.Minute, cleanup)
	nonceCache := cache.New(time.Duration(cfg.Auth.NonceTTLMinutes)*time.Minute, cleanup)

	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, zapLogger)
		zapLogger.Info("SMTP mailer initialized", zap.String("host", cfg.SMTP.Host))
	} else {
		mail = mailer.NewLogMailer(zapLogger)
		zapLogger.Warn("SMTP not configured, verification codes will only be logged")
	}

	auraTimeout := time.Duration(cfg.Aura.RequestTimeoutMillis) * time.Millisecond
	auraClient := client.NewAuraClient(cfg.Aura.BaseURL, cfg.Aura.APIKey, auraTimeout, cfg.Aura.RateLimit, cfg.Aura.BurstLimit, zapLogger)
	zapLogger.Info("Aura client initialized", zap.String("baseURL", cfg.Aura.BaseURL))

	var strategyFilter service.StrategyFilter
	if os.Getenv("GEMINI_API_KEY") != "" {
		genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			zapLogger.Fatal("Failed to initialize Gemini client", zap.Error(err))
		}
		strategyFilter = service.NewGeminiStrategyFilter(genaiClient, cfg.Strategies.Model, zapLogger)
		zapLogger.Info("Gemini strategy filter initialized", zap.String("model", cfg.Strategies.Model))
	} else {
		zapLogger.Warn("GEMINI_API_KEY not set, combined strategies fall back to concatenation")
	}

	authSvc := service.NewAuthService(userRepo, mail, codeCache, nonceCache, cfg, zapLogger)
	walletSvc := service.NewWalletService(walletRepo, encryptionKey, cfg.Wallets.MaxPerUser, zapLogger)
	portfolioSvc := service.NewPortfolioService(auraClient, portfolioCache, cfg, zapLogger)
	strategySvc := service.NewStrategyService(auraClient, strategyFilter, strategyCache, cfg, zapLogger)
	zapLogger.Info("Services initialized")

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // Adjust for production
	corsConfig.AllowCredentials = false
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(utils.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	restapi.RegisterRoutes(router, restapi.Handlers{
		Auth:      restapi.NewAuthHandler(authSvc, cfg, zapLogger),
		Wallet:    restapi.NewWalletHandler(walletSvc, zapLogger),
		Portfolio: restapi.NewPortfolioHandler(portfolioSvc, walletSvc, zapLogger),
		Strategy:  restapi.NewStrategyHandler(strategySvc, walletSvc, zapLogger),
	}, authSvc)

	if cfg.Swagger.Enabled {
		restapi.RegisterSwaggerRoutes(router, cfg.Swagger.Path)
		zapLogger.Info("Swagger UI enabled", zap.String("path", cfg.Swagger.Path+"/index.html"))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	// Make sure to protect these in a production environment.
	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		pprofRouter.GET("/block", gin.WrapH(pprof.Handler("block")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		pprofRouter.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
		pprofRouter.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
	}
	zapLogger.Info("Pprof endpoints enabled under /debug/pprof")

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
