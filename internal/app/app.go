package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"taskKeeper/internal/auth"
	"taskKeeper/internal/config"
	"taskKeeper/internal/handlers"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/middleware"
	"taskKeeper/internal/repository/postgres"
	taskinmem "taskKeeper/internal/repository/task/inmemory"
	taskpg "taskKeeper/internal/repository/task/postgres"
	userinmem "taskKeeper/internal/repository/user/inmemory"
	userpg "taskKeeper/internal/repository/user/postgres"
	"taskKeeper/internal/service"
	"taskKeeper/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	taskRepo, userRepo, err := a.initRepositories(ctx)
	if err != nil {
		return err
	}

	hasher := auth.NewHasher()
	tokens := auth.NewTokenService(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL)

	authService, err := service.NewAuthService(userRepo, hasher, tokens, a.config.Auth.SessionTTL)
	if err != nil {
		return fmt.Errorf("инициализация сервиса авторизации: %w", err)
	}
	taskService := service.NewTaskService(taskRepo)

	a.worker = worker.NewOverdueWorker(taskRepo, 5*time.Minute)
	a.router = a.buildRouter(tokens, authService, taskService)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.RequestTimeout,
		WriteTimeout: a.config.Server.RequestTimeout,
	}

	return nil
}

func (a *App) initRepositories(ctx context.Context) (service.TaskRepository, service.UserRepository, error) {
	switch a.config.Repository.Type {
	case "inmemory":
		logger.Info("App: Хранилище в памяти, данные не переживут рестарт")
		return taskinmem.NewTaskStorage(), userinmem.NewUserStorage(), nil

	case "postgres":
		if a.config.Database.Migrate {
			if err := postgres.RunMigrations(a.config.Database.URL); err != nil {
				return nil, nil, fmt.Errorf("миграции: %w", err)
			}
		}

		pool, err := postgres.NewPool(ctx, a.config.Database.URL, postgres.PoolConfig{
			MaxConnections: a.config.Database.MaxConnections,
			MinConnections: a.config.Database.MinConnections,
			IdleTimeout:    a.config.Database.IdleTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("подключение к postgres: %w", err)
		}

		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие пула соединений...")
			pool.Close()
		})

		return taskpg.New(pool), userpg.New(pool), nil

	default:
		return nil, nil, fmt.Errorf("неизвестный тип хранилища: %q", a.config.Repository.Type)
	}
}

func (a *App) buildRouter(tokens *auth.TokenService, authService *service.AuthService, taskService *service.TaskService) *chi.Mux {
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Timeout(a.config.Server.RequestTimeout))
	if a.config.RateLimit.Enabled {
		r.Use(middleware.RateLimit(a.config.RateLimit.RPM))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login
		r.Post("/logout", authHandler.Logout)     // POST /auth/logout

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens))
			r.Get("/verify", authHandler.Verify) // GET /auth/verify
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.Auth(tokens))

		r.Get("/", taskHandler.ListTasks) // GET /tasks
		r.Post("/", taskHandler.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", taskHandler.UpdateTaskByID)    // PUT /tasks/{id}
			r.Patch("/", taskHandler.UpdateTaskByID)  // PATCH /tasks/{id}
			r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /tasks/{id}
		})
	})

	r.Get("/health", taskHandler.HealthCheck)

	return r
}

func (a *App) Run(ctx context.Context) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	go a.worker.Start(workerCtx)
	a.shutdowns = append(a.shutdowns, cancelWorker)

	logger.Info("App: Сервер запускается", zap.String("addr", a.server.Addr))

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("работа сервера: %w", err)
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) {
	logger.Info("App: Остановка сервера...")

	if err := a.server.Shutdown(ctx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
	}

	// shutdown-функции в обратном порядке регистрации
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
