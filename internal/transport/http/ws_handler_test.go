package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"lingo-battle-service/internal/app"
	"lingo-battle-service/internal/domain"
	"lingo-battle-service/internal/infra/memory"
)

func TestWebSocketBattleFlow(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	source := memory.NewQuestionSource([]domain.Question{
		{ID: "q1", Content: "pick A", Options: map[string]string{"A": "1", "B": "2"}, CorrectAnswer: "A", Level: domain.LevelA1},
	})
	store := memory.NewMatchStore()
	service := app.NewService(app.Config{
		QuestionTime:  5 * time.Second,
		MatchTimeout:  30 * time.Millisecond,
		AnnounceDelay: 5 * time.Millisecond,
		RevealDelay:   5 * time.Millisecond,
		TimeoutDelay:  5 * time.Millisecond,
		Bot: app.BotConfig{
			Accuracy: 1.0,
			MinDelay: time.Millisecond,
			MaxDelay: 2 * time.Millisecond,
		},
	}, source, store, log)
	wsHandler := NewWSHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1&name=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	join := map[string]any{
		"type":    "join_queue",
		"payload": map[string]any{"level": "A1", "questionCount": 1},
	}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("write join_queue: %v", err)
	}

	// No second player shows up, so a bot is seated after the timeout.
	found := readUntil(conn, t, "match_found")
	roomID, _ := found["roomId"].(string)
	if roomID == "" {
		t.Fatalf("expected roomId in match_found, got %v", found)
	}
	player2, _ := found["player2"].(map[string]any)
	if bot, _ := player2["bot"].(bool); !bot {
		t.Fatalf("expected bot opponent, got %v", player2)
	}

	next := readUntil(conn, t, "next_question")
	if content, _ := next["content"].(map[string]any); content["correctAnswer"] != nil {
		t.Fatalf("correct answer leaked: %v", content)
	}

	answer := map[string]any{
		"type":    "submit_answer",
		"payload": map[string]any{"roomId": roomID, "answer": "A"},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write submit_answer: %v", err)
	}

	result := readUntil(conn, t, "answer_result")
	if correct, _ := result["isCorrect"].(bool); !correct {
		t.Fatalf("expected correct answer, got %v", result)
	}

	readUntil(conn, t, "game_finished")
}

func TestWebSocketRejectsMissingIdentity(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	service := app.NewService(app.Config{}, memory.NewQuestionSource(nil), memory.NewMatchStore(), log)
	wsHandler := NewWSHandler(service, log)

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing identity, got %d", resp.StatusCode)
	}
}

func readUntil(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read while waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
	}
}
