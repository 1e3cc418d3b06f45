package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/sqlite"
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

func init() {
	// Load env from .env
	godotenv.Load()
	// Do NOT open the database in init(); main() decides when (the HTTP
	// server starts listening first so health probes pass immediately).
}

// ConnectDatabase opens the single-file SQLite store and sets the global DB.
// Call this from main() AFTER the HTTP server is listening.
//
// Env:
// - SQLITE_PATH: database file path (default ./stats.sqlite)
// - DB_BUSY_TIMEOUT_MS: sqlite busy timeout (default 5000)
func ConnectDatabase() {
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = "stats.sqlite"
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create database directory %s: %v", dir, err)
		}
	}

	// One writer at a time is enough for this app; WAL keeps readers unblocked
	// while an import transaction is open.
	busyTimeout := intFromEnv("DB_BUSY_TIMEOUT_MS", 5000)
	dsn := path + "?_journal_mode=WAL&_busy_timeout=" + strconv.Itoa(busyTimeout)

	var err error
	db, err = gorm.Open(sqlite.Open(dsn), initConfig())
	if err != nil {
		log.Fatalf("failed to open sqlite database %s: %v", path, err)
	}

	if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
		// SQLite serializes writes anyway; a single connection avoids
		// SQLITE_BUSY churn under concurrent imports.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxIdleTime(time.Minute)
	}

	if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
		log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
	}
	log.Printf("connected to sqlite database at %s", path)
}

// SetDB overrides the global DB handle. Tests use this with an in-memory store.
func SetDB(handle *gorm.DB) {
	db = handle
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

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
	return newLogger
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
