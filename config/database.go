package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db *gorm.DB
)

func GetDB() *gorm.DB {
	return db
}

// SetDB replaces the shared handle, e.g. with one opened by a test.
func SetDB(d *gorm.DB) {
	db = d
}

func init() {
	// Load env from .env
	godotenv.Load()
	// IMPORTANT (Cloud Run):
	// Do NOT block startup in init() waiting for DB.
	// Cloud Run requires the container to start listening on $PORT quickly.
}

// ConnectDatabaseWithRetry connects and sets the global DB.
// Call this from main() AFTER the HTTP server is listening.
func ConnectDatabaseWithRetry() {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == "" {
		driver = "mysql"
	}

	var attempt int
	for {
		attempt++
		var err error
		db, err = gorm.Open(dialector(driver), initConfig())
		if err == nil {
			// Env overrides (optional):
			// - DB_MAX_OPEN_CONNS (default 50)
			// - DB_MAX_IDLE_CONNS (default 25)
			// - DB_CONN_MAX_LIFETIME_SECONDS (default 300)
			// - DB_CONN_MAX_IDLE_TIME_SECONDS (default 60)
			if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
				maxOpen := intFromEnv("DB_MAX_OPEN_CONNS", 50)
				maxIdle := intFromEnv("DB_MAX_IDLE_CONNS", 25)
				connMaxLife := time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second
				connMaxIdle := time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second

				if maxOpen > 0 {
					sqlDB.SetMaxOpenConns(maxOpen)
				}
				if maxIdle >= 0 {
					sqlDB.SetMaxIdleConns(maxIdle)
				}
				if connMaxLife > 0 {
					sqlDB.SetConnMaxLifetime(connMaxLife)
				}
				if connMaxIdle > 0 {
					sqlDB.SetConnMaxIdleTime(connMaxIdle)
				}
			}

			if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
				log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
			}
			log.Printf("connected to %s database (attempt=%d)", driver, attempt)
			return
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

// DBDriver returns the configured driver name (mysql or postgres).
func DBDriver() string {
	if db != nil {
		return db.Dialector.Name()
	}
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == "" {
		return "mysql"
	}
	return driver
}

func dialector(driver string) gorm.Dialector {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	if driver == "postgres" {
		sslMode := os.Getenv("DB_SSLMODE")
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			dbHost, dbUser, dbPassword, dbName, dbPort, sslMode)
		return postgres.Open(dsn)
	}

	network := "tcp"
	address := fmt.Sprintf("%s:%s", dbHost, dbPort)
	// DB_HOST=/cloudsql/<CONNECTION_NAME> connects through the Cloud SQL unix socket.
	if strings.HasPrefix(dbHost, "/cloudsql/") {
		network = "unix"
		address = dbHost
	}
	dsn := fmt.Sprintf("%s:%s@%s(%s)/%s?parseTime=true&loc=UTC",
		dbUser,
		dbPassword,
		network,
		address,
		dbName,
	)
	return mysql.Open(dsn)
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// InitConfig Initialize Config
func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
		TranslateError: true,

		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// InitLog Connection Log Configuration
func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Output to standard output
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error, // Adjust log level as needed
			SlowThreshold: time.Second,
		},
	)
	return newLogger
}

// InitNamingStrategy Init NamingStrategy
func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
