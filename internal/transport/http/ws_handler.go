package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"lingo-battle-service/internal/app"
	"lingo-battle-service/internal/domain"
)

type WSHandler struct {
	service  *app.Service
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinQueuePayload struct {
	Level         string `json:"level"`
	QuestionCount int    `json:"questionCount"`
}

type submitAnswerPayload struct {
	RoomID string `json:"roomId"`
	Answer string `json:"answer"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the connection and bridges it into the battle engine.
// The peer is handed to the engine as the player's event sink; a dropped
// read loop counts as a disconnect and forfeits any live match.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	name := r.URL.Query().Get("name")
	avatar := r.URL.Query().Get("avatar")
	if userID == "" || name == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	p := newPeer(conn, h.log)
	go p.writeLoop()
	defer p.close()
	defer h.service.Disconnect(userID)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "join_queue":
			var payload joinQueuePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				p.Send(app.EventError, app.ErrorPayload{Message: "invalid join_queue payload"})
				continue
			}
			h.service.JoinQueue(domain.PlayerProfile{
				UserID:        userID,
				Username:      name,
				AvatarURL:     avatar,
				Level:         payload.Level,
				QuestionCount: payload.QuestionCount,
			}, p)
		case "submit_answer":
			var payload submitAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				p.Send(app.EventError, app.ErrorPayload{Message: "invalid submit_answer payload"})
				continue
			}
			h.service.SubmitAnswer(payload.RoomID, userID, payload.Answer)
		default:
			p.Send(app.EventError, app.ErrorPayload{Message: "unsupported message type"})
		}
	}
}

// peer is one client connection as seen by the engine. Send never blocks:
// session timers must not wait on a slow client, so a full buffer drops
// the event.
type peer struct {
	conn *websocket.Conn
	log  *logrus.Logger

	mu     sync.Mutex
	closed bool
	send   chan outboundMessage
}

func newPeer(conn *websocket.Conn, log *logrus.Logger) *peer {
	return &peer{
		conn: conn,
		log:  log,
		send: make(chan outboundMessage, 32),
	}
}

func (p *peer) Send(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.send <- outboundMessage{Type: event, Payload: payload}:
	default:
		p.log.WithField("event", event).Warn("ws send buffer full, dropping event")
	}
}

func (p *peer) writeLoop() {
	for msg := range p.send {
		if err := p.conn.WriteJSON(msg); err != nil {
			p.log.WithError(err).Debug("ws write failed")
			return
		}
	}
}

func (p *peer) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.send)
}
