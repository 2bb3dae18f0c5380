// Package api собирает HTTP API хранилища зашифрованных записей.
//
//	GET    /api/v1/health
//	POST   /api/v1/clients                 # регистрация (публичный)
//	POST   /api/v1/auth/token              # bearer-токен по API-ключу (публичный)
//	GET    /api/v1/clients/{id}            # открытый ключ клиента (auth)
//	POST   /api/v1/records                 # создать запись (auth)
//	POST   /api/v1/records/query           # поиск записей (auth)
//	GET    /api/v1/records/{id}            # получить запись (auth)
//	PUT    /api/v1/records/{id}            # условно обновить запись (auth)
//	DELETE /api/v1/records/{id}            # удалить запись (auth)
//	GET|PUT|DELETE /api/v1/access_keys/{writer}/{user}/{reader}/{type} (auth)
//	PUT    /api/v1/policy/{writer}/{user}/{reader}/{type} (auth)
package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	accessKeyAPI "cipherkeeper/internal/app/server/api/http/accesskey"
	clientAPI "cipherkeeper/internal/app/server/api/http/client"
	healthAPI "cipherkeeper/internal/app/server/api/http/health"
	"cipherkeeper/internal/app/server/api/http/middleware"
	"cipherkeeper/internal/app/server/api/http/middleware/auth"
	"cipherkeeper/internal/app/server/api/http/middleware/logger"
	policyAPI "cipherkeeper/internal/app/server/api/http/policy"
	recordAPI "cipherkeeper/internal/app/server/api/http/record"
	"cipherkeeper/internal/domain/accesskey"
	"cipherkeeper/internal/domain/client"
	"cipherkeeper/internal/domain/policy"
	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/domain/session"
	"cipherkeeper/internal/infrastructure/storage/memory"
	"cipherkeeper/internal/infrastructure/storage/postgres"
)

const requestTimeout = 30 * time.Second

// Services - доменные сервисы, которые обслуживает API
type Services struct {
	DB         healthAPI.Pinger
	Clients    client.Servicer
	Sessions   session.Servicer
	Records    record.Servicer
	AccessKeys accesskey.Servicer
	Policies   policy.Servicer
}

type Handlers struct {
	Health    *healthAPI.Handler
	Client    *clientAPI.Handler
	Record    *recordAPI.Handler
	AccessKey *accessKeyAPI.Handler
	Policy    *policyAPI.Handler
}

// Repositories - реализации хранилища, на которых работают сервисы
type Repositories struct {
	DB         healthAPI.Pinger
	Clients    client.Repository
	Sessions   session.Repository
	Records    record.Repository
	AccessKeys accesskey.Repository
	Policies   policy.Repository
}

func PostgresRepositories(storage *postgres.Storage, log *slog.Logger) Repositories {
	return Repositories{
		DB:         storage,
		Clients:    postgres.NewClientRepository(storage, log),
		Sessions:   postgres.NewSessionRepository(storage, log),
		Records:    postgres.NewRecordRepository(storage, log),
		AccessKeys: postgres.NewAccessKeyRepository(storage, log),
		Policies:   postgres.NewPolicyRepository(storage, log),
	}
}

func MemoryRepositories(storage *memory.Storage) Repositories {
	return Repositories{
		DB:         storage,
		Clients:    memory.NewClientRepository(storage),
		Sessions:   memory.NewSessionRepository(storage),
		Records:    memory.NewRecordRepository(storage),
		AccessKeys: memory.NewAccessKeyRepository(storage),
		Policies:   memory.NewPolicyRepository(storage),
	}
}

// New создает *chi.Mux со всеми операциями поверх хранилища
func New(repos Repositories, sessionTTL time.Duration, log *slog.Logger) *chi.Mux {
	return NewRouter(NewServices(repos, sessionTTL, log), log)
}

// NewServices связывает репозитории и доменные сервисы
func NewServices(repos Repositories, sessionTTL time.Duration, log *slog.Logger) Services {
	clientService := client.NewService(repos.Clients, client.NewRegistrationValidator(), log)
	policyService := policy.NewService(repos.Policies, log)

	return Services{
		DB:         repos.DB,
		Clients:    clientService,
		Sessions:   session.NewService(repos.Sessions, sessionTTL, log),
		Records:    record.NewService(repos.Records, policyService, log),
		AccessKeys: accesskey.NewService(repos.AccessKeys, policyService, clientService, log),
		Policies:   policyService,
	}
}

// NewRouter регистрирует операции huma на chi
func NewRouter(svc Services, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.Recoverer, chimw.Timeout(requestTimeout))

	config := huma.DefaultConfig("Cipherkeeper API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(svc, log)
	h.Health.SetupRoutes(API)
	h.Client.SetupRoutes(API)
	h.Record.SetupRoutes(API)
	h.AccessKey.SetupRoutes(API)
	h.Policy.SetupRoutes(API)

	return mux
}

func handlers(svc Services, log *slog.Logger) *Handlers {
	authMW := auth.New(svc.Sessions, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(svc.DB, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	public := middlewares.GetAllAndClear()
	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	clientHandler := clientAPI.NewHandler(svc.Clients, svc.Sessions, log, public, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	recordHandler := recordAPI.NewHandler(svc.Records, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	accessKeyHandler := accessKeyAPI.NewHandler(svc.AccessKeys, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	policyHandler := policyAPI.NewHandler(svc.Policies, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:    healthHandler,
		Client:    clientHandler,
		Record:    recordHandler,
		AccessKey: accessKeyHandler,
		Policy:    policyHandler,
	}
}
