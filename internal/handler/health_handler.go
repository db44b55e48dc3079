package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/config"
	"github.com/noah-isme/evalsuite-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	Dependencies map[string]string `json:"dependencies"`
}

// HealthDependencies are probed on every health request. Nil entries are
// reported as disabled.
type HealthDependencies struct {
	DB    *gorm.DB
	Redis *redis.Client
	NATS  *nats.Conn
}

// HealthCheck returns a handler that reports application and dependency health.
func HealthCheck(cfg config.Config, deps HealthDependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(requestContext(c), 2*time.Second)
		defer cancel()

		payload := HealthResponse{
			Status:       "ok",
			Timestamp:    time.Now().UTC(),
			Service:      cfg.AppName,
			Environment:  cfg.AppEnv,
			Dependencies: map[string]string{"database": "disabled", "redis": "disabled", "nats": "disabled"},
		}

		if deps.DB != nil {
			payload.Dependencies["database"] = "up"
			sqlDB, err := deps.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				payload.Dependencies["database"] = "down"
				payload.Status = "degraded"
			}
		}

		if deps.Redis != nil {
			payload.Dependencies["redis"] = "up"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				payload.Dependencies["redis"] = "down"
				payload.Status = "degraded"
			}
		}

		if deps.NATS != nil {
			payload.Dependencies["nats"] = "up"
			if !deps.NATS.IsConnected() {
				payload.Dependencies["nats"] = "down"
				payload.Status = "degraded"
			}
		}

		if payload.Status != "ok" {
			return utils.SendSuccessWithStatus(c, fiber.StatusServiceUnavailable, "service degraded", payload)
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}
