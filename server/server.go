// Package server exposes the ingestion, answer, and online lookup pipelines
// over a websocket connection for browser front ends.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mkal/tourbot/pkg/ingest"
	"github.com/mkal/tourbot/pkg/lookup"
	"github.com/mkal/tourbot/pkg/rag"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the wire format in both directions. Inbound types are "ingest",
// "ask" and "online"; outbound types are "summary", "answer", "result",
// "status" and "error".
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// ingestPayload carries an uploaded file as base64 inside an ingest message.
type ingestPayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type Config struct {
	Addr   string
	Ingest *ingest.Pipeline
	Answer *rag.Pipeline
	Lookup *lookup.Client
	Logger *zap.Logger
}

type WSServer struct {
	config Config
	logger *zap.Logger
}

func New(config Config) *WSServer {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSServer{config: config, logger: logger}
}

// Start blocks serving websocket connections on the configured address.
func (s *WSServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.logger.Info("starting websocket server", zap.String("addr", s.config.Addr))
	return http.ListenAndServe(s.config.Addr, mux)
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("websocket closed", zap.Error(err))
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			s.logger.Warn("invalid message", zap.Error(err))
			s.sendMessage(conn, "error", "invalid message format")
			continue
		}

		// One message at a time: ingestion and answering are synchronous
		// pipelines, and the audit log and vector store expect one writer.
		s.handleMessage(r.Context(), conn, msg)
	}
}

func (s *WSServer) handleMessage(ctx context.Context, conn *websocket.Conn, msg Message) {
	switch msg.Type {
	case "ingest":
		s.handleIngest(ctx, conn, msg)

	case "ask":
		answer := s.config.Answer.Answer(ctx, msg.Content)
		if answer != "" {
			s.sendMessage(conn, "answer", answer)
			return
		}
		// Local miss: fall through to the online lookup.
		s.sendMessage(conn, "status", "No local answer found. Searching online...")
		s.sendResult(conn, s.config.Lookup.Search(ctx, msg.Content))

	case "online":
		s.sendResult(conn, s.config.Lookup.Search(ctx, msg.Content))

	default:
		s.sendMessage(conn, "error", "unknown message type: "+msg.Type)
	}
}

func (s *WSServer) handleIngest(ctx context.Context, conn *websocket.Conn, msg Message) {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		s.sendMessage(conn, "error", "invalid ingest payload")
		return
	}
	var payload ingestPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Filename == "" {
		s.sendMessage(conn, "error", "invalid ingest payload")
		return
	}

	content, err := base64.StdEncoding.DecodeString(payload.Content)
	if err != nil {
		s.sendMessage(conn, "error", "ingest payload is not valid base64")
		return
	}

	result, err := s.config.Ingest.Ingest(ctx, content, payload.Filename)
	if err != nil {
		s.sendMessage(conn, "error", ingest.UserMessage(err))
		return
	}
	s.sendMessage(conn, "summary", result)
}

func (s *WSServer) sendResult(conn *websocket.Conn, result lookup.Result) {
	msg := Message{Type: "result", Data: result}
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Error("failed to send result", zap.Error(err))
	}
}

func (s *WSServer) sendMessage(conn *websocket.Conn, msgType string, content string) {
	msg := Message{Type: msgType, Content: content}
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Error("failed to send message", zap.Error(err))
	}
}
