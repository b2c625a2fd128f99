package database

import (
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"standbill_backend/internals/configs"
	"standbill_backend/internals/helpers/logger"
)

var DB *gorm.DB

// DSN builds the Postgres URL from DB_* env with a server-side statement_timeout.
func DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(configs.GetEnv("DB_USER"), configs.GetEnv("DB_PASSWORD")),
		Host:   fmt.Sprintf("%s:%s", configs.GetEnv("DB_HOST", "localhost"), configs.GetEnv("DB_PORT", "5432")),
		Path:   "/" + configs.GetEnv("DB_NAME"),
	}
	q := url.Values{}
	q.Set("sslmode", configs.GetEnv("DB_SSLMODE", "require"))
	q.Set("application_name", "standbill")
	q.Set("options", "-c statement_timeout="+configs.GetEnv("DB_STATEMENT_TIMEOUT_MS", "3000"))
	u.RawQuery = q.Encode()
	return u.String()
}

func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // aman untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
}

func ConnectDB() error {
	log := logger.WithComponent("database")
	log.Info().Msg("🔌 connecting to PostgreSQL...")

	db, err := Open(DSN())
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	DB = db
	log.Info().Msg("✅ DB connected")
	return nil
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log := logger.WithComponent("database")
		log.Warn().Err(err).Msg("pool tune")
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(DB); err != nil {
			log := logger.WithComponent("database")
			log.Warn().Err(err).Msg("warm-up ping")
		}
	}()
}

func Ping(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("db not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
