package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/aidar/crew-service/internal/app"
	"github.com/aidar/crew-service/internal/config"
)

const (
	dbName     = "crew_service_test"
	dbUser     = "crew_test"
	dbPassword = "crew_test_pass"
)

// TestEnvironment связывает контейнер PostgreSQL, приложение и HTTP клиент одного теста
type TestEnvironment struct {
	DB      *pgxpool.Pool // прямой доступ к БД для проверок и порчи данных
	BaseURL string

	client *http.Client
	ctx    context.Context
}

// SetupTestEnvironment поднимает PostgreSQL, применяет схему и запускает приложение на httptest сервере.
// Все ресурсы освобождаются через t.Cleanup.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applySchema(t, ctx, pool)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	application, err := app.New(appConfig(host, port.Port()))
	require.NoError(t, err)
	require.NoError(t, application.Initialize(ctx))

	server := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		server.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Shutdown(shutdownCtx)
	})

	return &TestEnvironment{
		DB:      pool,
		BaseURL: server.URL,
		client:  server.Client(),
		ctx:     ctx,
	}
}

// appConfig собирает конфигурацию приложения поверх контейнера
func appConfig(host, port string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0"}, // слушает httptest сервер
		Database: config.DatabaseConfig{
			Host:     host,
			Port:     port,
			User:     dbUser,
			Password: dbPassword,
			Name:     dbName,
			SSLMode:  "disable",
			MaxConns: 10,
			MinConns: 1,
		},
		JWT:   config.JWTConfig{Secret: "integration-secret", ExpirationHours: 1},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"*"}},
		Store: config.StoreConfig{Driver: config.StoreDriverPostgres},
	}
}

// applySchema выполняет up-миграцию из каталога migrations в корне модуля
func applySchema(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	schema, err := os.ReadFile(filepath.Join(moduleRoot(t), "migrations", "000001_init_schema.up.sql"))
	require.NoError(t, err)

	// Без аргументов pgx использует simple protocol, поэтому несколько выражений допустимы
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err, "apply schema")
}

func moduleRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found above %s", dir)
		dir = parent
	}
}

// MakeRequest отправляет запрос к приложению, token добавляется как Bearer
func (te *TestEnvironment) MakeRequest(t *testing.T, method, path string, body io.Reader, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(te.ctx, method, te.BaseURL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := te.client.Do(req)
	require.NoError(t, err)
	return resp
}
