package api

import (
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// scrubRequest is one scrubber movement from the UI: a layout selection plus
// the simulated date and decimal hour.
type scrubRequest struct {
	Layout string  `json:"layout"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Hour   float64 `json:"hour"`
}

type scrubError struct {
	Error string `json:"error"`
}

// handleScrub answers each scrub event with a freshly sampled frame. Bad
// input gets an error message on the socket, not a disconnect; the
// connection closes only when the client goes away.
func (s *Server) handleScrub(c *websocket.Conn) {
	s.log.Debug("scrubber connected", zap.String("remote", c.RemoteAddr().String()))
	defer s.log.Debug("scrubber disconnected")

	for {
		var req scrubRequest
		if err := c.ReadJSON(&req); err != nil {
			return
		}

		m, err := moment(req.Date, req.Hour)
		if err != nil {
			if werr := c.WriteJSON(scrubError{err.Error()}); werr != nil {
				return
			}
			continue
		}
		frame, err := s.frame(req.Layout, m)
		if err != nil {
			if werr := c.WriteJSON(scrubError{err.Error()}); werr != nil {
				return
			}
			continue
		}
		if err := c.WriteJSON(frame); err != nil {
			return
		}
	}
}
