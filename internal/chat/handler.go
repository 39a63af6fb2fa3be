package chat

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/net/websocket"

	"github.com/Rup-source226/maa-care-ai/internal/http/middleware"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// Handler serves POST /chat and its websocket twin GET /chat/ws. Both run
// the same assistant; the socket just keeps the connection open for
// multi-turn exchanges.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Message handles one request/response exchange.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}

	var in chatRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No message provided"})
		return
	}

	reply, err := h.service.Reply(r.Context(), sess.ID, in.Message)
	if err != nil {
		h.logger.Error("chat reply failed", "error", err, "session_id", sess.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

type wsInbound struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wsOutbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Socket upgrades to a websocket and relays messages through the assistant.
// The session comes from the cookie the handshake request carries.
func (h *Handler) Socket(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}

	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r, sess)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request, sess *middleware.Session) {
	h.logger.Info("chat socket opened", "session_id", sess.ID)
	defer h.logger.Info("chat socket closed", "session_id", sess.ID)

	for {
		var msg wsInbound
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, wsOutbound{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		_ = websocket.JSON.Send(conn, wsOutbound{Type: "typing"})

		reply, err := h.service.Reply(r.Context(), sess.ID, msg.Text)
		if err != nil {
			h.logger.Error("chat reply failed", "error", err, "session_id", sess.ID)
			_ = websocket.JSON.Send(conn, wsOutbound{Type: "error", Text: "assistant unavailable"})
			continue
		}
		_ = websocket.JSON.Send(conn, wsOutbound{Type: "message", Text: reply})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
