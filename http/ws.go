package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"studentperf/inference"
	"studentperf/student"
)

const (
	wsWriteWait = 10 * time.Second
	wsIdleWait  = 10 * time.Minute
	wsMaxBytes  = 8 << 10
)

// wsReply answers one form state sent over the socket. HTML is the
// rendered result panel, so the page and the socket share one template.
type wsReply struct {
	RequestID string            `json:"request_id"`
	Result    *inference.Result `json:"result,omitempty"`
	HTML      string            `json:"html,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// handleWebSocket re-evaluates the form on every message, the way the page
// re-runs the prediction on each user action. Messages are handled one at
// a time on the connection's goroutine.
func (api *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := api.upgrader.Upgrade(w, r, nil)
	if err != nil {
		api.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxBytes)

	connID := GetRequestID(r.Context())
	api.logger.Debug("websocket connected", zap.String("conn", connID))

	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleWait))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				api.logger.Debug("websocket closed", zap.String("conn", connID), zap.Error(err))
			}
			return
		}

		reply := api.evaluate(r, payload)
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			api.logger.Debug("websocket write failed", zap.String("conn", connID), zap.Error(err))
			return
		}
	}
}

func (api *API) evaluate(r *http.Request, payload []byte) wsReply {
	reply := wsReply{RequestID: uuid.NewString()}
	body := make(map[string]any)
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		reply.Error = "pesan tidak valid: " + err.Error()
		return reply
	}

	bundle, err := api.source.Current()
	if err != nil {
		reply.Error = artifactMessage(api.source.Path(), err)
		return reply
	}

	record := student.DefaultRecord(bundle.Classes)
	if err := setFields(&record, bundle, jsonField(body)); err != nil {
		reply.Error = err.Error()
		return reply
	}

	ctx := inference.WithRequestID(r.Context(), reply.RequestID)
	result, err := api.adapter.Predict(ctx, bundle, record)
	if err != nil {
		api.logger.Error("prediction failed", zap.String("request_id", reply.RequestID), zap.Error(err))
		reply.Error = err.Error()
		return reply
	}
	reply.Result = &result

	var buf bytes.Buffer
	if err := api.pages.ExecuteTemplate(&buf, "result", newResultView(result)); err != nil {
		api.logger.Error("failed to render result", zap.Error(err))
	} else {
		reply.HTML = buf.String()
	}
	return reply
}
