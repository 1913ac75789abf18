package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case strings.HasPrefix(path, "/v1/schedules/search") || strings.HasPrefix(path, "/v1/search"):
			ttl = "private, max-age=0" // Availability depends on the clock

		case strings.HasPrefix(path, "/v1/stations/search"):
			ttl = "public, max-age=300" // 5 min for search results

		case strings.Contains(path, "/stations/") && strings.HasSuffix(path, "/departures"):
			ttl = "public, max-age=60" // Departures go stale quickly

		case strings.HasPrefix(path, "/v1/stations"):
			ttl = "public, max-age=3600" // 1 hour for stable reference data

		case path == "/v1/feeds/status":
			ttl = "public, max-age=60" // Feed stats: 1 min

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300" // 5 min default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
