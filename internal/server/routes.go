package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, runs *RunManager) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	e.GET("/", IndexHandler)
	e.POST("/run", StartRunHandler(runs))
	e.GET("/ws/:run_id", RunEventsHandler(runs))
}

// StartRunHandler starts an investigation run and returns its ID for the
// WebSocket connection.
func StartRunHandler(runs *RunManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		type startRunBody struct {
			TopicA string `json:"topic_a" validate:"required"`
			TopicB string `json:"topic_b" validate:"required"`
			Rounds int    `json:"rounds" validate:"omitempty,min=1"`
		}

		type startRunResponse struct {
			Message string `json:"message,omitempty"`
			RunID   string `json:"run_id,omitempty"`
		}

		data := new(startRunBody)
		if err := c.Bind(data); err != nil {
			return c.JSON(http.StatusBadRequest, startRunResponse{
				Message: "Invalid request body",
			})
		}
		if err := c.Validate(data); err != nil {
			return c.JSON(http.StatusBadRequest, startRunResponse{
				Message: "Invalid request body",
			})
		}
		if data.Rounds == 0 {
			data.Rounds = 3
		}

		run, err := runs.Start(data.TopicA, data.TopicB, data.Rounds)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, startRunResponse{
				Message: "Internal server error",
			})
		}

		return c.JSON(http.StatusOK, startRunResponse{
			RunID: run.ID,
		})
	}
}

// IndexHandler serves the built-in board page.
func IndexHandler(c echo.Context) error {
	return c.HTML(http.StatusOK, boardPage)
}
