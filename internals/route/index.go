// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"standbill_backend/internals/configs"
	"standbill_backend/internals/helpers/logger"
	authMiddleware "standbill_backend/internals/middlewares/auth"
	routeDetails "standbill_backend/internals/route/details"
)

var startTime time.Time

type Options struct {
	JWTSecret string
	Ledger    configs.LedgerConfig
}

func SetupRoutes(app *fiber.App, db *gorm.DB, opts Options) {
	startTime = time.Now()
	log := logger.WithComponent("routes")

	log.Info().Msg("Setting up BaseRoutes...")
	BaseRoutes(app, db)

	// ===================== ADMIN (back office) =====================
	log.Info().Msg("Setting up ADMIN group (Auth + RoleCheck per route)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              opts.JWTSecret,
			AllowCookieFallback: true,
		}),
	)

	log.Info().Msg("Mounting Finance routes...")
	routeDetails.FinanceAdminRoutes(admin, db, opts.Ledger)
}
