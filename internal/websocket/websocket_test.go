package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/apexline/gridlock/internal/logger"
	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/services"
)

// mockEventService implements services.EventServicer for testing
type mockEventService struct {
	mu       sync.Mutex
	upcoming []services.EventView
}

func newMockEventService() *mockEventService {
	return &mockEventService{}
}

func (m *mockEventService) setUpcoming(events []services.EventView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upcoming = events
}

func (m *mockEventService) Upcoming(ctx context.Context) ([]services.EventView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upcoming, nil
}

// Unused interface methods
func (m *mockEventService) Create(ctx context.Context, input services.EventInput) (*models.Event, error) {
	return nil, nil
}
func (m *mockEventService) Get(ctx context.Context, id string) (*services.EventView, error) {
	return nil, nil
}
func (m *mockEventService) List(ctx context.Context, season int) ([]services.EventView, error) {
	return nil, nil
}
func (m *mockEventService) Drivers(ctx context.Context) ([]models.Driver, error) { return nil, nil }
func (m *mockEventService) UpsertDriver(ctx context.Context, driver models.Driver) error {
	return nil
}

func TestNew_CreatesHubWithDependencies(t *testing.T) {
	hub := New(logger.New(), newMockEventService())

	if hub == nil {
		t.Fatal("expected hub to be created")
	}
	if hub.clients == nil {
		t.Error("expected clients map to be initialized")
	}
	if hub.broadcast == nil {
		t.Error("expected broadcast channel to be initialized")
	}
	if hub.register == nil {
		t.Error("expected register channel to be initialized")
	}
	if hub.unregister == nil {
		t.Error("expected unregister channel to be initialized")
	}
}

func TestHub_BroadcastMessage(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	time.Sleep(10 * time.Millisecond)

	// BroadcastMessage should not block even with no clients
	done := make(chan bool)
	go func() {
		hub.BroadcastMessage("test", map[string]string{"key": "value"})
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("BroadcastMessage blocked with no clients")
	}
}

func TestHub_BroadcastEventSettled_ImplementsBroadcaster(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	time.Sleep(10 * time.Millisecond)

	var _ services.Broadcaster = hub

	done := make(chan bool)
	go func() {
		hub.BroadcastEventSettled(&models.Event{ID: "e1"}, []models.RatingChange{{UserID: "u1", RatingDelta: 40}})
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("BroadcastEventSettled blocked")
	}
}

func TestHub_ClientRegistration(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	time.Sleep(10 * time.Millisecond)

	client := &Client{
		hub:  hub,
		send: make(chan models.WSMessage, 256),
	}

	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	hub.mutex.RLock()
	_, exists := hub.clients[client]
	hub.mutex.RUnlock()

	if !exists {
		t.Error("expected client to be registered")
	}

	hub.unregister <- client
	time.Sleep(50 * time.Millisecond)

	hub.mutex.RLock()
	_, exists = hub.clients[client]
	hub.mutex.RUnlock()

	if exists {
		t.Error("expected client to be unregistered")
	}
}

func TestHub_StartLockCountdown_ContextCancellation(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan bool)
	stopped := make(chan bool)

	go func() {
		started <- true
		hub.StartLockCountdown(ctx)
		stopped <- true
	}()

	<-started
	time.Sleep(50 * time.Millisecond)

	cancel()

	select {
	case <-stopped:
	case <-time.After(500 * time.Millisecond):
		t.Error("countdown did not stop when context was cancelled")
	}
}

// ==================== WebSocket Integration Tests ====================

func TestServeWs_ClientConnection(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	// Convert http://... to ws://...
	url := "ws" + server.URL[4:]

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer ws.Close()

	time.Sleep(100 * time.Millisecond)

	hub.mutex.RLock()
	clientCount := len(hub.clients)
	hub.mutex.RUnlock()

	if clientCount != 1 {
		t.Errorf("expected 1 client, got %d", clientCount)
	}
}

func TestServeWs_InitialCalendarSnapshot(t *testing.T) {
	events := newMockEventService()
	events.setUpcoming([]services.EventView{
		{Event: models.Event{ID: "e1", Name: "Bahrain GP"}, LocksInMS: 3_600_000},
	})
	hub := New(logger.New(), events)
	hub.Start()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	url := "ws" + server.URL[4:]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read initial message: %v", err)
	}

	var msg models.WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		t.Fatalf("failed to unmarshal message: %v", err)
	}
	if msg.Type != "upcoming_events" {
		t.Errorf("expected type 'upcoming_events', got %s", msg.Type)
	}
}

func TestServeWs_BroadcastToClient(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	url := "ws" + server.URL[4:]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer ws.Close()

	time.Sleep(100 * time.Millisecond)

	// Read and discard the initial upcoming_events message
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read initial upcoming_events: %v", err)
	}

	hub.BroadcastEventSettled(&models.Event{ID: "e1", Status: models.EventStatusSettled}, []models.RatingChange{
		{UserID: "u1", Username: "alice", OldRating: 1200, NewRating: 1280, RatingDelta: 80, Score: 100},
	})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}

	var msg models.WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		t.Fatalf("failed to unmarshal message: %v", err)
	}

	if msg.Type != "event_settled" {
		t.Errorf("expected type 'event_settled', got %s", msg.Type)
	}
}

func TestServeWs_ClientDisconnect(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	url := "ws" + server.URL[4:]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	ws.Close()

	time.Sleep(200 * time.Millisecond)

	hub.mutex.RLock()
	clientCount := len(hub.clients)
	hub.mutex.RUnlock()

	if clientCount != 0 {
		t.Errorf("expected 0 clients after disconnect, got %d", clientCount)
	}
}

func TestServeWs_MultipleClients(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	url := "ws" + server.URL[4:]

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		ws, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("failed to connect client %d: %v", i+1, err)
		}
		defer ws.Close()
		conns[i] = ws
	}

	time.Sleep(200 * time.Millisecond)

	// Discard initial upcoming_events messages from all clients
	for i, ws := range conns {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := ws.ReadMessage(); err != nil {
			t.Errorf("client %d failed to read initial upcoming_events: %v", i+1, err)
		}
	}

	hub.mutex.RLock()
	clientCount := len(hub.clients)
	hub.mutex.RUnlock()

	if clientCount != 3 {
		t.Errorf("expected 3 clients, got %d", clientCount)
	}

	hub.BroadcastMessage("broadcast_test", map[string]int{"count": 123})

	// All clients should receive the message
	for i, ws := range conns {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, message, err := ws.ReadMessage()
		if err != nil {
			t.Errorf("client %d failed to read message: %v", i+1, err)
			continue
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			t.Errorf("client %d failed to unmarshal: %v", i+1, err)
			continue
		}

		if msg.Type != "broadcast_test" {
			t.Errorf("client %d got wrong type: %s", i+1, msg.Type)
		}
	}
}

func TestServeWs_RapidDisconnect(t *testing.T) {
	events := newMockEventService()
	events.setUpcoming([]services.EventView{
		{Event: models.Event{ID: "e1", Name: "Bahrain GP"}, LocksInMS: 3_600_000},
	})
	hub := New(logger.New(), events)
	hub.Start()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	url := "ws" + server.URL[4:]

	// Clients that vanish immediately after connecting must not take the
	// hub down with them
	for i := 0; i < 20; i++ {
		ws, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("failed to connect client %d: %v", i+1, err)
		}
		ws.Close()
	}

	time.Sleep(200 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect after churn: %v", err)
	}
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err != nil {
		t.Fatalf("failed to read initial upcoming_events: %v", err)
	}

	hub.BroadcastMessage("still_alive", nil)

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read broadcast after churn: %v", err)
	}

	var msg models.WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		t.Fatalf("failed to unmarshal message: %v", err)
	}
	if msg.Type != "still_alive" {
		t.Errorf("expected type 'still_alive', got %s", msg.Type)
	}
}

func TestBroadcastNextLock_SendsCountdown(t *testing.T) {
	events := newMockEventService()
	events.setUpcoming([]services.EventView{
		{Event: models.Event{ID: "e1", Name: "Bahrain GP"}, LocksInMS: 5_000},
	})
	hub := New(logger.New(), events)
	hub.Start()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	url := "ws" + server.URL[4:]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer ws.Close()

	time.Sleep(100 * time.Millisecond)

	// Read and discard the initial upcoming_events message
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err != nil {
		t.Fatalf("failed to read initial upcoming_events: %v", err)
	}

	// Manually trigger one countdown tick
	hub.broadcastNextLock()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}

	var msg models.WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		t.Fatalf("failed to unmarshal message: %v", err)
	}
	if msg.Type != "lock_countdown" {
		t.Errorf("expected type 'lock_countdown', got %s", msg.Type)
	}

	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected payload shape: %T", msg.Payload)
	}
	if payload["event_id"] != "e1" {
		t.Errorf("event_id = %v, want e1", payload["event_id"])
	}
	if payload["seconds"] != float64(5) {
		t.Errorf("seconds = %v, want 5", payload["seconds"])
	}
}

func TestBroadcastNextLock_NoUpcomingEvents(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	// This should not panic or broadcast anything
	hub.broadcastNextLock()
}

func TestServeWs_UpgradeError(t *testing.T) {
	hub := New(logger.New(), newMockEventService())
	hub.Start()

	// A request without upgrade headers should fail the upgrade cleanly
	req := httptest.NewRequest("GET", "/ws", nil)
	w := httptest.NewRecorder()

	hub.ServeWs(w, req)
}
