// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helperAuth "standbill_backend/internals/helpers/auth"
	"standbill_backend/internals/helpers/logger"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool
	// toleransi jam server vs issuer
	ExpirySkew time.Duration
}

// AuthJWT verifies the bearer token and stores user id and role in Locals.
func AuthJWT(opts AuthJWTOpts) fiber.Handler {
	if opts.ExpirySkew == 0 {
		opts.ExpirySkew = 30 * time.Second
	}
	log := logger.WithComponent("auth")

	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(opts.Secret) == "" {
			log.Error().Msg("JWT_SECRET is empty")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		tokenString, err := extractBearerToken(c, opts.AllowCookieFallback)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "unexpected signing method")
			}
			return []byte(opts.Secret), nil
		}); err != nil {
			log.Debug().Err(err).Msg("token parse failed")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		if err := validateTokenExpiry(claims, opts.ExpirySkew); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		c.Locals(helperAuth.LocUserID, userID.String())
		storeBasicClaimsToLocals(c, claims)

		return c.Next()
	}
}
