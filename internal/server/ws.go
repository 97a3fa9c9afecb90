package server

import (
	"net/http"
	"time"

	"corkboard/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// RunEventsHandler streams a run's events over a WebSocket: the full backlog
// first, then live events until the run completes or the client disconnects.
func RunEventsHandler(runs *RunManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		run, ok := runs.Get(c.Param("run_id"))
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{
				"message": "Unknown run_id",
			})
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		defer conn.Close()

		// Reader goroutine: we never expect client messages, but reading
		// is how gorilla surfaces a disconnect.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		backlog, live, cancel := run.Events.Subscribe()
		defer cancel()

		for _, event := range backlog {
			if err := writeEvent(conn, event); err != nil {
				return nil
			}
		}

		for {
			select {
			case event, ok := <-live:
				if !ok {
					message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run complete")
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					conn.WriteMessage(websocket.CloseMessage, message)
					return nil
				}
				if err := writeEvent(conn, event); err != nil {
					return nil
				}
			case <-done:
				return nil
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, event any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(event); err != nil {
		logger.Debug("WebSocket write failed", "err", err)
		return err
	}
	return nil
}
