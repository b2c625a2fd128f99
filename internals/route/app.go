package routes

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"gorm.io/gorm"

	helper "standbill_backend/internals/helpers"
	middlewares "standbill_backend/internals/middlewares"
	reqLogger "standbill_backend/internals/middlewares/logger"
)

// NewApp builds the Fiber app with the full middleware chain and every route mounted.
func NewApp(db *gorm.DB, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		// semua error (termasuk fiber.NewError dari middleware) lewat envelope yang sama
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.JsonAppError(c, err)
		},
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// HTTP timeout guard sedikit di atas LEDGER_TX_TIMEOUT
	timeout := opts.Ledger.TxTimeout + time.Second
	app.Use(reqLogger.RequestLogger(timeout))

	middlewares.SetupMiddlewares(app)
	SetupRoutes(app, db, opts)
	return app
}
