package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/besuhoff/skyline-blaster-go/internal/auth"
	"github.com/besuhoff/skyline-blaster-go/internal/config"
	"github.com/besuhoff/skyline-blaster-go/internal/db"
	"github.com/besuhoff/skyline-blaster-go/internal/game"
	"github.com/besuhoff/skyline-blaster-go/internal/protocol"
	"github.com/besuhoff/skyline-blaster-go/internal/types"
)

// ErrStopped is returned by Query once the world loop has exited
var ErrStopped = errors.New("game server stopped")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

type inboundMessage struct {
	client *WebsocketClient
	msg    types.Message
}

type query struct {
	fn   func(*game.Engine)
	done chan struct{}
}

// GameServer owns the world. Every engine call happens on the Run goroutine;
// client pumps and HTTP handlers talk to it through channels.
type GameServer struct {
	engine            *game.Engine
	recorder          db.Recorder
	secretKey         string
	maxMessagesPerSec int

	clients    map[string]*WebsocketClient
	register   chan *WebsocketClient
	unregister chan *WebsocketClient
	inbound    chan inboundMessage
	queries    chan query
	done       chan struct{}

	stats sync.WaitGroup
}

// NewGameServer creates a new game server around engine. A nil recorder
// disables stats.
func NewGameServer(engine *game.Engine, recorder db.Recorder, cfg *config.Config) *GameServer {
	if recorder == nil {
		recorder = db.NopRecorder{}
	}
	return &GameServer{
		engine:            engine,
		recorder:          recorder,
		secretKey:         cfg.SecretKey,
		maxMessagesPerSec: cfg.MaxMessagesPerSec,
		clients:           make(map[string]*WebsocketClient),
		register:          make(chan *WebsocketClient),
		unregister:        make(chan *WebsocketClient),
		inbound:           make(chan inboundMessage, config.InboundBufferSize),
		queries:           make(chan query),
		done:              make(chan struct{}),
	}
}

// Run is the world loop. It returns when ctx is cancelled, after closing
// every client and waiting for pending stats writes.
func (gs *GameServer) Run(ctx context.Context) error {
	defer func() {
		close(gs.done)
		gs.closeClients()
		gs.stats.Wait()
		slog.Info("game server loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-gs.register:
			gs.registerClient(client)

		case client := <-gs.unregister:
			gs.unregisterClient(client)

		case in := <-gs.inbound:
			gs.handleMessage(in.client, in.msg)

		case q := <-gs.queries:
			q.fn(gs.engine)
			close(q.done)
		}
	}
}

// Query runs fn on the world goroutine and waits for it to finish. fn must
// not keep references to engine state.
func (gs *GameServer) Query(ctx context.Context, fn func(*game.Engine)) error {
	q := query{fn: fn, done: make(chan struct{})}
	select {
	case gs.queries <- q:
	case <-gs.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (gs *GameServer) registerClient(client *WebsocketClient) {
	gs.clients[client.ID] = client
	gs.dispatch(gs.engine.Connect(client.ID))

	slog.Info("client connected", "id", client.ID, "protocol", client.codec.Name(), "clients", len(gs.clients))
}

func (gs *GameServer) unregisterClient(client *WebsocketClient) {
	if _, exists := gs.clients[client.ID]; !exists {
		return
	}
	delete(gs.clients, client.ID)
	close(client.Send)

	gs.dispatch(gs.engine.Disconnect(client.ID))

	slog.Info("client disconnected", "id", client.ID, "clients", len(gs.clients))
}

func (gs *GameServer) closeClients() {
	for id, client := range gs.clients {
		client.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"),
			time.Now().Add(time.Second))
		close(client.Send)
		delete(gs.clients, id)
	}
}

func (gs *GameServer) handleMessage(client *WebsocketClient, msg types.Message) {
	if _, exists := gs.clients[client.ID]; !exists {
		return
	}

	switch payload := msg.Payload.(type) {
	case types.JoinPayload:
		if strings.TrimSpace(payload.Name) == "" {
			payload.Name = client.Name
		}
		gs.dispatch(gs.engine.Join(client.ID, payload))
	case types.MovePayload:
		gs.dispatch(gs.engine.Move(client.ID, payload))
	case types.ShotPayload:
		outcome, messages := gs.engine.Shoot(client.ID, payload)
		gs.dispatch(messages)
		gs.recordOutcome(client.ID, outcome)
	case types.SaberPayload:
		gs.dispatch(gs.engine.Saber(client.ID, payload))
	default:
		slog.Debug("dropping unhandled message", "id", client.ID, "type", msg.Type)
	}
}

// dispatch encodes each message once per codec and queues it for every
// addressed client. A full send buffer drops the message for that client.
func (gs *GameServer) dispatch(messages []game.Outbound) {
	for _, out := range messages {
		encoded := make(map[string][]byte)
		for _, client := range gs.clients {
			if !out.Target.Includes(client.ID) {
				continue
			}

			data, ok := encoded[client.codec.Name()]
			if !ok {
				var err error
				data, err = client.codec.Encode(out.Message)
				if err != nil {
					slog.Error("encoding outbound message", "type", out.Message.Type, "codec", client.codec.Name(), "error", err)
					continue
				}
				encoded[client.codec.Name()] = data
			}

			select {
			case client.Send <- data:
			default:
				slog.Debug("send buffer full, dropping message", "id", client.ID, "type", out.Message.Type)
			}
		}
	}
}

// recordOutcome writes leaderboard stats off the world goroutine
func (gs *GameServer) recordOutcome(shooterID string, outcome game.Outcome) {
	if !outcome.Killed && !outcome.Destroyed {
		return
	}
	shooter, ok := gs.engine.PlayerName(shooterID)
	if !ok {
		return
	}
	var victim string
	if outcome.Killed {
		victim, _ = gs.engine.PlayerName(outcome.PlayerID)
	}

	gs.stats.Add(1)
	go func() {
		defer gs.stats.Done()
		ctx, cancel := context.WithTimeout(context.Background(), config.StatsWriteTimeout)
		defer cancel()

		var err error
		if outcome.Killed {
			err = gs.recorder.RecordKill(ctx, shooter, victim)
		} else {
			err = gs.recorder.RecordBuildingDestroyed(ctx, shooter)
		}
		if err != nil {
			slog.Warn("failed to record stats", "shooter", shooter, "error", err)
		}
	}()
}

// HandleWebSocket upgrades the request and attaches a client to the world.
// When a secret key is configured a valid token is required, either as the
// token query parameter or a Bearer Authorization header.
func (gs *GameServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	var name string
	if gs.secretKey != "" {
		token := r.URL.Query().Get("token")
		if token == "" {
			// Check Authorization header as fallback
			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		if token == "" {
			http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(gs.secretKey, token)
		if err != nil {
			slog.Info("rejecting websocket", "remote", r.RemoteAddr, "error", err)
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}
		name = claims.Name
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := &WebsocketClient{
		ID:     uuid.New().String(),
		Name:   name,
		Conn:   conn,
		Send:   make(chan []byte, config.SendBufferSize),
		Server: gs,
		codec:  protocol.CodecFor(r.URL.Query().Get("protocol")),
	}

	// registration completes before the pumps start, so the bootstrap
	// message is queued ahead of anything the client sends
	select {
	case gs.register <- client:
	case <-gs.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
