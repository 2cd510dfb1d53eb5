package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizduel-api/internal/config"
	"github.com/yourusername/quizduel-api/internal/handler"
	"github.com/yourusername/quizduel-api/internal/middleware"
	pgRepo "github.com/yourusername/quizduel-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quizduel-api/internal/repository/redis"
	"github.com/yourusername/quizduel-api/internal/service"
	ws "github.com/yourusername/quizduel-api/internal/websocket"
	"github.com/yourusername/quizduel-api/pkg/auth"
	"github.com/yourusername/quizduel-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	storeRepo := pgRepo.NewStoreRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	matchRepo := pgRepo.NewMatchRepo(db)
	tournamentRepo := pgRepo.NewTournamentRepo(db)
	resultRepo := pgRepo.NewResultRepo(db)
	usageRepo := pgRepo.NewUsageRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Верификатор JWT: токены выпускает внешний identity-сервис
	verifier, err := auth.NewJWTVerifier(cfg.JWT.Secret)
	if err != nil {
		log.Printf("Failed to initialize JWTVerifier: %v", err)
		os.Exit(1)
	}

	// Контекст жизненного цикла фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация WebSocket
	wsHub := ws.NewHub()
	go wsHub.Run()
	wsManager := ws.NewManager(wsHub)

	// Инициализируем сервисы
	usageService := service.NewUsageService(usageRepo, storeRepo, cfg.Game.DailyMatchLimit, cfg.Game.DailyTournamentLimit)
	matchService := service.NewMatchService(matchRepo, questionRepo, usageService, wsManager, cfg.Game.WaitingTTL(), cfg.Game.ActiveTTL())
	resultService := service.NewResultService(matchRepo, resultRepo, tournamentRepo, wsManager)
	gameService := service.NewGameService(matchRepo, questionRepo, userRepo, cacheRepo, usageService, resultService, wsManager)
	tournamentService := service.NewTournamentService(
		tournamentRepo, matchRepo, questionRepo, usageService, wsManager,
		cfg.Game.WaitingTTL(), cfg.Game.ActiveTTL(), cfg.Game.RandomizeSeeding,
	)
	// Завершённые матчи сетки продвигают победителей по турниру
	resultService.SetBracketHook(tournamentService)

	// Sweeper истекших матчей и турниров
	sweeper := service.NewSweeper(matchRepo, tournamentRepo, cfg.Game.SweepInterval())
	go sweeper.Run(ctx)

	// Инициализируем обработчики
	matchHandler := handler.NewMatchHandler(matchService, gameService, resultService)
	tournamentHandler := handler.NewTournamentHandler(tournamentService)
	usageHandler := handler.NewUsageHandler(usageService, resultService)
	wsHandler := handler.NewWSHandler(wsHub, wsManager, verifier)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(verifier)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	api.Use(rateLimiter.Limit(middleware.DefaultGameRateLimitConfig()))
	{
		// Матчи
		matches := api.Group("/matches")
		{
			matches.POST("", rateLimiter.Limit(middleware.StrictCreateRateLimitConfig()), matchHandler.CreateMatch)
			matches.POST("/join", matchHandler.JoinMatchByCode)
			matches.GET("/code/:code", matchHandler.GetMatchByCode)

			matchWithID := matches.Group("/:id")
			matchWithID.Use(middleware.ExtractUintParam("id", "matchID"))
			{
				matchWithID.GET("", matchHandler.GetMatch)
				matchWithID.POST("/join", matchHandler.JoinMatch)
				matchWithID.DELETE("", matchHandler.CancelMatch)
				matchWithID.GET("/questions", matchHandler.GetMatchQuestions)
				matchWithID.POST("/answers", matchHandler.SubmitAnswer)
				matchWithID.POST("/hints", matchHandler.UseHint)
				matchWithID.GET("/progress", matchHandler.GetProgress)
				matchWithID.GET("/scoreboard", matchHandler.GetScoreboard)
				matchWithID.GET("/result", matchHandler.GetMatchResult)
				matchWithID.GET("/tournament", tournamentHandler.CheckMatch)
			}
		}

		// Турниры
		tournaments := api.Group("/tournaments")
		{
			tournaments.POST("", rateLimiter.Limit(middleware.StrictCreateRateLimitConfig()), tournamentHandler.CreateTournament)
			tournaments.POST("/join", tournamentHandler.JoinTournamentByCode)
			tournaments.GET("/code/:code", tournamentHandler.GetTournamentByCode)

			tournamentWithID := tournaments.Group("/:id")
			tournamentWithID.Use(middleware.ExtractUintParam("id", "tournamentID"))
			{
				tournamentWithID.GET("", tournamentHandler.GetTournament)
				tournamentWithID.POST("/join", tournamentHandler.JoinTournament)
				tournamentWithID.DELETE("", tournamentHandler.CancelTournament)
			}
		}

		// История итогов и квоты
		api.GET("/results/my", matchHandler.ListMyResults)
		api.GET("/limits", usageHandler.GetDailyLimits)

		// Администрирование
		admin := api.Group("/admin")
		admin.Use(authMiddleware.AdminOnly())
		{
			admin.GET("/results/export", usageHandler.ExportResults)
		}
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	// Контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
