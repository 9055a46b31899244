package database

import (
	"context"
	"fmt"
	"time"

	"provider-subscription-api/internal/config"
	"provider-subscription-api/internal/models"
	"provider-subscription-api/pkg/logging"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	DB          *gorm.DB
	RedisClient *redis.Client
)

// InitDatabase initializes database connection
func InitDatabase() error {
	var err error

	DB, err = Open(config.AppConfig.DatabaseURL, config.AppConfig.SQLitePath, config.AppConfig.Mode)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := initRedis(); err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	if err := AutoMigrate(DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// Open connects to PostgreSQL when dsn is set and falls back to SQLite at sqlitePath.
func Open(dsn, sqlitePath, mode string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if dsn == "" {
		logging.Infof("Database URL not set, using SQLite at %s", sqlitePath)
		dialector = sqlite.Open(sqlitePath)
	} else {
		dialector = postgres.Open(dsn)
	}

	logLevel := logger.Warn
	if mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Infof("Database connected successfully")
	return db, nil
}

// initRedis initializes Redis connection
func initRedis() error {
	redisURL := config.AppConfig.RedisURL
	if redisURL == "" {
		return fmt.Errorf("REDIS_URL is not set")
	}

	logging.Infof("Connecting to Redis: %s", maskRedisURL(redisURL))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logging.Errorf("Failed to parse Redis URL: %v", err)
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	RedisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		logging.Errorf("Failed to connect to Redis: %v", err)
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Infof("Redis connected successfully")
	return nil
}

// maskRedisURL masks sensitive information in Redis URL for logging
func maskRedisURL(url string) string {
	if len(url) > 20 {
		return url[:10] + "***" + url[len(url)-10:]
	}
	return "***"
}

// AutoMigrate performs database migration
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ServiceProvider{},
		&models.Subscription{},
		&models.SubscriptionEvent{},
		&models.ServiceOffer{},
	)
}

// Ping checks both backing stores. A nil client counts as down.
func Ping(ctx context.Context, db *gorm.DB, rdb *redis.Client) (dbErr, redisErr error) {
	if db == nil {
		dbErr = fmt.Errorf("database not initialized")
	} else if sqlDB, err := db.DB(); err != nil {
		dbErr = err
	} else {
		dbErr = sqlDB.PingContext(ctx)
	}

	if rdb == nil {
		redisErr = fmt.Errorf("redis not initialized")
	} else {
		redisErr = rdb.Ping(ctx).Err()
	}
	return dbErr, redisErr
}

// GetDB returns database instance
func GetDB() *gorm.DB {
	return DB
}

// GetRedis returns Redis client
func GetRedis() *redis.Client {
	return RedisClient
}

// CloseDatabase closes database connections
func CloseDatabase() error {
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logging.Errorf("Failed to close database: %v", err)
			}
		}
	}

	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logging.Errorf("Failed to close Redis: %v", err)
		}
	}

	return nil
}
