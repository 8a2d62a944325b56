package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Every endpoint answers HTTP 200 with a {success, message?|data}
// envelope; clients branch on the success field.

// Generic message used whenever persistence fails. The underlying error
// is logged, never surfaced.
const databaseErrorMessage = "A database error occurred. Please try again later."

func respondFail(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": false,
		"message": message,
	})
}

func respondOK(c echo.Context, payload echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// parseID parses a client-provided identifier. Form selects submit
// their values as strings, so identifiers arrive as numeric strings.
func parseID(value string) (uint, bool) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}
