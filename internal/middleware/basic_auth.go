package middleware

import (
	"crypto/subtle"
	"strings"

	"etf-analysis/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"
)

const uploadRealm = "etf-holdings"

// UploadAuthConfig guards write routes. Both fields empty disables the check.
// A half-configured pair rejects every write.
type UploadAuthConfig struct {
	User string
	Pass string // plain text, or a bcrypt hash when it starts with "$2"
}

// UploadAuth requires HTTP Basic credentials on POST, PUT, PATCH and DELETE.
// Reads pass through.
func UploadAuth(cfg UploadAuthConfig) fiber.Handler {
	if cfg.User == "" && cfg.Pass == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return basicauth.New(basicauth.Config{
		Next:  isReadMethod,
		Realm: uploadRealm,
		Authorizer: func(user, pass string) bool {
			return checkCredentials(cfg, user, pass)
		},
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+uploadRealm+`"`)
			return response.Unauthorized(c, "Unauthorized")
		},
		ContextUsername: "upload_user",
	})
}

func isReadMethod(c *fiber.Ctx) bool {
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return true
	}
	return false
}

func checkCredentials(cfg UploadAuthConfig, user, pass string) bool {
	if cfg.User == "" || cfg.Pass == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(user), []byte(cfg.User)) != 1 {
		return false
	}
	if strings.HasPrefix(cfg.Pass, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(cfg.Pass), []byte(pass)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.Pass)) == 1
}
