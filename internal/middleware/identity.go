package middleware

// identity.go defines helper functions shared across middleware files.
// It provides an operator identity extraction used by the cache and
// rate-limit key builders: the subject claim when a JWT is present,
// "guest" otherwise.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// operatorKey extracts an operator identifier from the request
// context for use in cache and rate-limit keys.  It returns "guest"
// when no operator is authenticated.
func operatorKey(c echo.Context) string {
	v := c.Get("operator_id")
	if v == nil {
		return "guest"
	}
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%.0f", id)
	case uint64:
		return fmt.Sprintf("%d", id)
	}
	return "guest"
}
