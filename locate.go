package graphiql

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/shyptr/graphiql/editor"
	"github.com/shyptr/graphiql/locator"
	"go.uber.org/zap"
)

// LocateRequest asks which definition the cursor is in. Either Position (raw
// editor coordinates) or Range (offsets already resolved by the editor) is set.
type LocateRequest struct {
	ID       string           `json:"id,omitempty"`
	Query    string           `json:"query"`
	Position *editor.Position `json:"position,omitempty"`
	Range    *locator.Range   `json:"range,omitempty"`
}

// LocateResponse carries the anchor, or on the WebSocket a Reason when there is none.
type LocateResponse struct {
	ID       string `json:"id,omitempty"`
	Anchor   string `json:"anchor,omitempty"`
	Selector string `json:"selector,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

var errNoCursor = errors.New("graphiql: locate request without position or range")

func (s *Server) locate(req LocateRequest) (locator.Anchor, error) {
	var r locator.Range
	switch {
	case req.Range != nil:
		r = *req.Range
	case req.Position != nil:
		r = editor.NewBuffer(req.Query).CursorRange(*req.Position)
	default:
		s.metrics.observeLocate(errNoCursor)
		return locator.Anchor{}, errNoCursor
	}
	anchor, err := s.locator.Locate(req.Query, r)
	s.metrics.observeLocate(err)
	return anchor, err
}

func (s *Server) respond(req LocateRequest) LocateResponse {
	resp := LocateResponse{ID: req.ID}
	anchor, err := s.locate(req)
	if err != nil {
		resp.Reason = reason(err)
		return resp
	}
	resp.Anchor, resp.Selector = anchor.String(), anchor.Selector()
	return resp
}

// serveLocate answers 204 whenever no anchor is found: clicking simply does nothing.
func (s *Server) serveLocate(c *Context) {
	var req LocateRequest
	if err := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)).Decode(&req); err != nil {
		c.ServerError(err.Error(), http.StatusBadRequest)
		return
	}
	resp := s.respond(req)
	if resp.Anchor == "" {
		c.Logger.Debug("no definition at cursor", zap.String("reason", resp.Reason))
		c.Writer.WriteHeader(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resp)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// serveLocateWS answers every frame independently and in order.
func (s *Server) serveLocateWS(c *Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.Logger.Warn("locate websocket closed", zap.Error(err))
			}
			return
		}
		var req LocateRequest
		resp := LocateResponse{Reason: "bad_request"}
		if err := json.Unmarshal(data, &req); err == nil {
			resp = s.respond(req)
		}
		if err := conn.WriteJSON(resp); err != nil {
			c.Logger.Warn("locate websocket write failed", zap.Error(err))
			return
		}
	}
}
