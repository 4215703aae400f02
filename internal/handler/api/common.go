package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"psenrich/internal/models"
)

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, models.ErrorResponse{Error: msg})
}

func paginatedResponse(data interface{}, total int64, page, limit int) models.PaginatedResponse {
	return models.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		limit = 50
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// queryInt reads an integer query parameter with a default.
func queryInt(c echo.Context, name string, defaultVal int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return defaultVal
	}
	return v
}
