package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"etf-analysis/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// errorLogSize is how many recent 5xx entries /health/errors keeps.
const errorLogSize = 50

// ErrorEntry is one element of the Redis error log.
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
	TraceID string    `json:"trace_id,omitempty"`
}

// NewErrorHandler returns the global Fiber error handler. Unhandled errors are
// sent in the standard error format; 5xx errors are logged and, when rdb is
// set, pushed onto the capped error log.
func NewErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("unhandled error")
			if rdb != nil {
				entry, _ := json.Marshal(ErrorEntry{
					Time:    time.Now().UTC(),
					Method:  c.Method(),
					Path:    c.OriginalURL(),
					Status:  code,
					Message: err.Error(),
					TraceID: GetTraceID(c),
				})
				ctx := context.Background()
				rdb.LPush(ctx, KeyErrorLog, entry)
				rdb.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
			}
		}

		return response.Error(c, message, code, nil)
	}
}
