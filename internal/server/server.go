package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"ctchen222/tictactoe-history/internal/api/controller"
	"ctchen222/tictactoe-history/internal/api/middleware"
	"ctchen222/tictactoe-history/internal/api/service"
	"ctchen222/tictactoe-history/internal/hub"
	"ctchen222/tictactoe-history/internal/session"
	"ctchen222/tictactoe-history/internal/validator"
	"ctchen222/tictactoe-history/internal/view"
	"ctchen222/tictactoe-history/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Options configures a Server.
type Options struct {
	ServiceName  string
	CookieName   string
	SecureCookie bool
}

type Server struct {
	engine   *gin.Engine
	hub      *hub.Hub
	games    service.GameService
	upgrader websocket.Upgrader
}

func NewServer(h *hub.Hub, games service.GameService, tokens *session.Tokens, opts Options) *Server {
	s := &Server{
		engine: gin.New(),
		hub:    h,
		games:  games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	s.engine.Use(gin.Recovery(), otelgin.Middleware(opts.ServiceName))
	s.engine.SetHTMLTemplate(view.Templates())
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	gc := controller.NewGameController(games)
	sessions := s.engine.Group("/", middleware.Session(tokens, middleware.SessionOptions{
		CookieName: opts.CookieName,
		Secure:     opts.SecureCookie,
	}))
	sessions.GET("/", gc.Page)
	sessions.POST("/squares/:index", gc.PlaySquare)
	sessions.POST("/history/:step", gc.JumpTo)
	sessions.GET("/ws", s.handleWebSocket)

	api := sessions.Group("/api/game")
	api.GET("", gc.GetGame)
	api.DELETE("", gc.ResetGame)
	api.POST("/squares/:index", gc.PlaySquareJSON)
	api.POST("/history/:step", gc.JumpToJSON)

	return s
}

// Engine returns the http.Handler serving every route.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// handleWebSocket upgrades the connection, sends the current game and then
// serves the client's clicks until it disconnects. Every change is rendered
// to all connections of the session by the game service.
func (s *Server) handleWebSocket(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))

	v, err := s.games.State(ctx, sessionID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load game for websocket", "session.id", sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load game")
		span.End()
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "failed to upgrade connection", "session.id", sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upgrade connection")
		span.End()
		return
	}

	client := hub.NewClient(sessionID, conn)
	span.SetAttributes(attribute.String("client.id", client.ID))
	if msg, err := proto.NewRender(v); err == nil {
		_ = client.Send(msg)
	} else {
		slog.ErrorContext(ctx, "failed to render initial game", "session.id", sessionID, "error", err)
	}
	s.hub.Register(client)
	span.End()

	// The request context ends when this handler returns, so the write pump
	// gets a detached one.
	go client.WritePump(context.WithoutCancel(ctx))
	client.ReadPump(ctx, s.hub, func(ctx context.Context, raw []byte) {
		s.handleMessage(ctx, sessionID, raw)
	})
}

func (s *Server) handleMessage(ctx context.Context, sessionID string, raw []byte) {
	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.WarnContext(ctx, "dropping malformed message", "session.id", sessionID, "error", err)
		return
	}
	if err := validator.GetValidator().Struct(msg); err != nil {
		slog.WarnContext(ctx, "dropping invalid message", "session.id", sessionID, "error", err)
		return
	}
	if _, err := s.games.Apply(ctx, sessionID, msg.Event()); err != nil {
		slog.ErrorContext(ctx, "failed to apply message", "session.id", sessionID, "message.type", msg.Type, "error", err)
	}
}
