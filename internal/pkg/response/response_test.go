package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]interface{}) {
	app := fiber.New()
	app.Get("/", h)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestSuccess(t *testing.T) {
	code, out := call(t, func(c *fiber.Ctx) error {
		return Success(c, "ok", []int{1, 2}, nil)
	})
	assert.Equal(t, 200, code)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "ok", out["message"])
	assert.Len(t, out["data"], 2)
	assert.Equal(t, map[string]interface{}{}, out["metadata"])

	code, out = call(t, func(c *fiber.Ctx) error {
		return SuccessCreated(c, "made", nil, fiber.Map{"count": 3})
	})
	assert.Equal(t, 201, code)
	assert.EqualValues(t, 3, out["metadata"].(map[string]interface{})["count"])
}

func TestErrors(t *testing.T) {
	for _, tc := range []struct {
		h    fiber.Handler
		code int
	}{
		{func(c *fiber.Ctx) error { return BadRequest(c, "bad") }, 400},
		{func(c *fiber.Ctx) error { return Unauthorized(c, "bad") }, 401},
		{func(c *fiber.Ctx) error { return NotFound(c, "bad") }, 404},
		{func(c *fiber.Ctx) error { return Error(c, "bad", 502, nil) }, 502},
	} {
		code, out := call(t, tc.h)
		assert.Equal(t, tc.code, code)
		assert.Equal(t, "error", out["status"])
		detail := out["error"].(map[string]interface{})
		assert.Equal(t, "bad", detail["message"])
		assert.EqualValues(t, tc.code, detail["statusCode"])
	}
}
