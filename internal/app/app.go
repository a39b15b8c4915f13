package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/crew-service/internal/config"
	"github.com/aidar/crew-service/internal/handler"
	"github.com/aidar/crew-service/internal/middleware"
	"github.com/aidar/crew-service/internal/repository"
	"github.com/aidar/crew-service/internal/repository/memory"
	"github.com/aidar/crew-service/internal/repository/postgres"
	"github.com/aidar/crew-service/internal/service"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config *config.Config
	db     *pgxpool.Pool
	server *http.Server
	logger *slog.Logger
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	// Инициализируем структурированный логгер (JSON формат)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	// Подключаемся к базе данных (в режиме memory БД не используется)
	if a.config.Store.Driver == config.StoreDriverPostgres {
		if err := a.connectDB(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	// Настраиваем HTTP сервер и роутинг
	a.setupServer()

	a.logger.Info("Application initialized successfully")
	return nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// repositories возвращает Directory и Registry для выбранного драйвера
func (a *App) repositories() (repository.UserRepository, repository.CrewRepository) {
	if a.config.Store.Driver == config.StoreDriverMemory {
		a.logger.Warn("Using in-memory store, data will not survive a restart")
		return memory.NewUserRepository(), memory.NewCrewRepository()
	}
	return postgres.NewUserRepository(a.db), postgres.NewCrewRepository(a.db)
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() {
	// Инициализируем слой репозиториев
	userRepo, crewRepo := a.repositories()

	// Инициализируем слой сервисов (бизнес-логика)
	userService := service.NewUserService(userRepo)
	crewService := service.NewCrewService(crewRepo, userRepo, a.logger)
	authService := service.NewAuthService(
		userRepo,
		a.config.JWT.Secret,
		a.config.JWT.GetExpiration(),
	)

	// Инициализируем HTTP обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	crewHandler := handler.NewCrewHandler(crewService)

	// Инициализируем middleware для JWT авторизации
	authMiddleware := middleware.AuthMiddleware(authService)

	// Настраиваем роутер
	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS(a.config.CORS.AllowedOrigins))

	// Публичные эндпоинты (без авторизации)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
	})

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			a.logger.Error("Failed to write health check response", "error", err)
		}
	})

	// Регистрация пользователя доступна без токена (выдача токена вне этого сервиса)
	r.Post("/users/add", userHandler.AddUser)

	// Защищенные эндпоинты (требуют JWT токен в заголовке Authorization)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		// Эндпоинты пользователей
		r.Get("/users/me", userHandler.Me)
		r.Get("/users/{uid}", userHandler.GetUser)

		// Эндпоинты crew
		r.Route("/crew", func(r chi.Router) {
			r.Post("/", crewHandler.CreateCrew)
			r.Put("/leave", crewHandler.Leave)
			r.Get("/{crewID}", crewHandler.GetCrew)
			r.Put("/{crewID}/promote/{targetUID}", crewHandler.Promote)
			r.Put("/{crewID}/demote/{targetUID}", crewHandler.Demote)
			r.Put("/{crewID}/add/{targetUID}", crewHandler.Add)
			r.Put("/{crewID}/remove/{targetUID}", crewHandler.Remove)
		})

		// Эндпоинты статистики и аудита согласованности (только PostgreSQL)
		if a.db != nil {
			statsHandler := handler.NewStatsHandler(service.NewStatsService(a.db))
			r.Get("/stats", statsHandler.GetStats)
			r.Get("/stats/crew", statsHandler.GetCrewStats)
		}
	})

	// Создаем HTTP сервер с настройками таймаутов
	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr, "store", a.config.Store.Driver)
}

// Handler возвращает HTTP обработчик приложения (используется в тестах)
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает HTTP сервер
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Закрываем подключения к базе данных
	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
