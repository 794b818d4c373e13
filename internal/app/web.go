package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/tronsgaard/gaugemonitor/internal/config"
	"github.com/tronsgaard/gaugemonitor/internal/reading"
)

// RunWeb subscribes to the gauge topics and serves the live chart:
// static page from ./web, latest readings as JSON, and a websocket
// stream pushing every reading to connected browsers.
func RunWeb(cfg *config.Config, logger *slog.Logger) error {
	var (
		mu     sync.RWMutex
		latest = make(map[int]reading.Reading)
	)

	hub := newWSHub(logger.With("component", "ws"))

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	logger.Info("connected to MQTT broker", "broker", cfg.MQTTBroker)

	// 2) Subscribe to all gauge topics, cache latest + fan out
	token := client.Subscribe(cfg.TopicFilter(), 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r reading.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			logger.Error("reading unmarshal failed", "topic", msg.Topic(), "err", err)
			return
		}
		mu.Lock()
		latest[r.Gauge] = r
		mu.Unlock()
		hub.broadcast(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe: %w", token.Error())
	}
	logger.Info("subscribed", "filter", cfg.TopicFilter())

	// 3) JSON API endpoint: latest reading per gauge
	http.HandleFunc("/api/readings", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		readings := make([]reading.Reading, 0, len(latest))
		for _, id := range cfg.Gauges {
			if rd, ok := latest[id]; ok {
				readings = append(readings, rd)
			}
		}
		mu.RUnlock()

		if len(readings) == 0 {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(readings); err != nil {
			logger.Error("json encode failed", "err", err)
		}
	})

	// 4) Websocket stream
	http.HandleFunc("/ws", hub.handle)

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	logger.Info("web server listening", "addr", cfg.WebListenAddr)
	return http.ListenAndServe(cfg.WebListenAddr, nil)
}

// wsHub tracks connected websocket clients and pushes readings to them.
// Slow clients get dropped rather than stalling the broadcast.
type wsHub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func newWSHub(logger *slog.Logger) *wsHub {
	return &wsHub{
		upgrader: websocket.Upgrader{
			// The chart page is served from the same origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

func (h *wsHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	send := make(chan []byte, 16)
	h.mu.Lock()
	h.clients[conn] = send
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("websocket client connected", "clients", n)

	// Writer goroutine; the reader only watches for close.
	go func() {
		for payload := range send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.drop(conn)
				return
			}
		}
	}()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

func (h *wsHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- payload:
		default:
			// Client is not keeping up.
			delete(h.clients, conn)
			close(send)
			conn.Close()
			h.logger.Warn("dropped slow websocket client")
		}
	}
}

func (h *wsHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	conn.Close()
}
