package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/pkg"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

const (
	actionConnect = "connect"
	actionMove    = "game:move"
	actionReset   = "game:reset"
	actionError   = "error"

	wsPath          = "/ws"
	maxMessageBytes = 1 << 10
	shutdownTimeout = 5 * time.Second
)

type uGame interface {
	Connect(ctx context.Context, sessionID string) (*entity.GameState, error)
	MakeMove(ctx context.Context, sessionID string, coord entity.Coord) (*entity.GameState, tictactoe.MoveResult, error)
	Reset(ctx context.Context, sessionID string) (*entity.GameState, error)
}

type handlerFunc func(ctx context.Context, sessionID string, message *Message, conn *websocket.Conn) error

type Server struct {
	logger     *slog.Logger
	uGame      uGame
	sessionTTL time.Duration
	upgrader   websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, uGame uGame, sessionTTL time.Duration) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket"),
		uGame:      uGame,
		sessionTTL: sessionTTL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameHostOrigin,
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionReset] = server.handleReset

	return server
}

// Handler - returns the HTTP handler serving the WebSocket endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(wsPath, func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	header := http.Header{}
	sessionID := that.sessionFromCookie(req)
	if sessionID == "" {
		sessionID = pkg.GenerateNewSessionID()
		header.Add("Set-Cookie", pkg.NewSessionCookie(sessionID, that.sessionTTL, "/").String())
		log.Info("session cookie not found, new one created", "session", sessionID)
	}

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn.SetReadLimit(maxMessageBytes)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	defer conn.Close()

	log.Info("WebSocket connection established", "session", sessionID)

	if err = that.handleMessages(ctx, sessionID, conn); err != nil {
		log.Info("connection closed", "session", sessionID, "reason", err)
	}
}

// sameHostOrigin - accepts pages served from the same host on any port,
// since the page and the socket listen on different ports.
func sameHostOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host, _, err := net.SplitHostPort(req.Host)
	if err != nil {
		host = req.Host
	}

	return strings.EqualFold(originURL.Hostname(), host)
}

func (that *Server) sessionFromCookie(req *http.Request) string {
	cookie, err := req.Cookie(pkg.SessionCookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, sessionID string, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages", "session", sessionID)

	for {
		_, reqBody, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)

			if err = that.sendErrorResponse(conn, actionError, "malformed message"); err != nil {
				return err
			}

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)

			if err = that.sendErrorResponse(conn, message.Action, apperror.ErrUnknownAction.Error()); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, sessionID, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
			return err
		}
	}
}
