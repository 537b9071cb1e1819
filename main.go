package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"rentledger/db/store"
	_ "rentledger/docs"
)

// Package-level wiring. Tests swap these for in-memory equivalents.
var (
	dataStore store.Store
	logg      zerolog.Logger
	ledgerOpt LedgerOptions
)

// @title Rent Ledger API
// @version 1.0
// @description Payment ingestion and monthly arrears computation for a care facility.
// @host localhost:8080
// @BasePath /api
func main() {
	logg = newLogger()
	ledgerOpt = loadLedgerOptions()
	decimal.MarshalJSONWithoutQuotes = true

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "password")
	dbName := envOr("DB_NAME", "rentledger")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	// Connect with retry so the server survives the database coming up
	// after it in compose.
	var pool *pgxpool.Pool
	var err error
	maxRetries := 30
	retryInterval := 2 * time.Second
	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(context.Background(), connStr)
		if err == nil {
			err = pool.Ping(context.Background())
		}
		if err != nil {
			logg.Warn().Err(err).Int("attempt", i+1).Msg("database not ready")
			if pool != nil {
				pool.Close()
			}
			time.Sleep(retryInterval)
			continue
		}
		logg.Info().Msg("connected to database")
		break
	}
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to connect to database after retries")
	}
	defer pool.Close()

	migrationsPath := filepath.Join(".", "db", "migrations")
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		logg.Info().Str("path", migrationsPath).Msg("migrations directory not found, skipping")
	} else {
		migrateDB, err := sql.Open("postgres", connStr)
		if err != nil {
			logg.Fatal().Err(err).Msg("failed to open migration connection")
		}
		if err := runMigrations(migrateDB, migrationsPath); err != nil {
			logg.Fatal().Err(err).Msg("failed to run migrations")
		}
		if version, dirty, err := getMigrationVersion(migrateDB, migrationsPath); err == nil {
			logg.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
		}
		migrateDB.Close()
	}

	dataStore = store.NewPostgres(pool, logg)

	r := setupRouter(envOr("CORS_ORIGIN", "http://localhost:3000"))

	port := envOr("PORT", "8080")
	logg.Info().Str("port", port).Msg("server starting")
	if err := r.Run(":" + port); err != nil {
		logg.Fatal().Err(err).Msg("server stopped")
	}
}

// setupRouter builds the gin engine with CORS and all routes. Shared with
// the handler tests.
func setupRouter(corsOrigin string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.POST("/api/upload", uploadPayments)
	r.GET("/api/years", getYears)
	r.GET("/api/payments", getPayments)
	r.GET("/api/arrears", getMonthlyArrears)
	r.GET("/api/arrears/summary", getArrearsSummary)

	r.GET("/api/tenants", getTenants)
	r.POST("/api/tenants", createTenant)
	r.GET("/api/tenants/:id", getTenant)
	r.PUT("/api/tenants/:id", updateTenant)
	r.DELETE("/api/tenants/:id", deleteTenant)
	r.POST("/api/tenants/:id/rent-history", addRentHistory)
	r.DELETE("/api/rent-history/:id", deleteRentHistory)
	r.POST("/api/tenants/:id/absences", addAbsentPeriod)
	r.DELETE("/api/absences/:id", deleteAbsentPeriod)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// loadLedgerOptions reads the ledger configuration from the environment.
func loadLedgerOptions() LedgerOptions {
	opts := DefaultLedgerOptions()
	switch AbsencePolicy(os.Getenv("ABSENCE_POLICY")) {
	case AbsenceWaiveDue:
		opts.AbsencePolicy = AbsenceWaiveDue
	case AbsenceIgnore, "":
		opts.AbsencePolicy = AbsenceIgnore
	default:
		logg.Warn().Str("value", os.Getenv("ABSENCE_POLICY")).Msg("unknown ABSENCE_POLICY, using ignore")
	}
	return opts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
