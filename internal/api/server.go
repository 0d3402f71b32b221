package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"threadpool/internal/events"
	"threadpool/internal/logger"
	"threadpool/internal/worker"

	"golang.org/x/net/websocket"
)

const (
	maxJobsPerRequest = 10000
	maxJobDuration    = time.Minute
	statusInterval    = time.Second
)

// Server はプールを操作・観測する API サーバー
type Server struct {
	addr string
	pool *worker.Pool
	bus  *events.Bus

	mu        sync.RWMutex
	wsClients map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しい API サーバーを作成する
// bus はプールの WithSink に渡したものと同じであること
func NewServer(addr string, pool *worker.Pool, bus *events.Bus) *Server {
	return &Server{
		addr:      addr,
		pool:      pool,
		bus:       bus,
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/api/jobs", s.handleJobs)

	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))

	return mux
}

// Start はサーバーを開始し、ctx がキャンセルされるまでブロックする
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.broadcastLoop(ctx)

	logger.Info("api", "API Server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	Size        int  `json:"size"`
	LiveWorkers int  `json:"live_workers"`
	QueueDepth  int  `json:"queue_depth"`
	Closed      bool `json:"closed"`
}

func (s *Server) status() StatusResponse {
	return StatusResponse{
		Size:        s.pool.Size(),
		LiveWorkers: s.pool.LiveWorkers(),
		QueueDepth:  s.pool.QueueDepth(),
		Closed:      s.pool.Closed(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, s.pool.Metrics().Snapshot())
}

// SubmitResponse はジョブ投入レスポンス
type SubmitResponse struct {
	Submitted int    `json:"submitted"`
	Duration  string `json:"duration"`
}

// handleJobs は指定時間スリープするジョブを count 個投入する
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, duration, err := parseJobParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	submitted := 0
	for range count {
		err := s.pool.TrySubmit(func() {
			time.Sleep(duration)
		})
		if err != nil {
			if submitted == 0 {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			break
		}
		submitted++
	}

	s.writeJSON(w, http.StatusAccepted, SubmitResponse{
		Submitted: submitted,
		Duration:  duration.String(),
	})
}

func parseJobParams(r *http.Request) (int, time.Duration, error) {
	q := r.URL.Query()

	count := 1
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxJobsPerRequest {
			return 0, 0, fmt.Errorf("count must be between 1 and %d", maxJobsPerRequest)
		}
		count = n
	}

	var duration time.Duration
	if v := q.Get("duration"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 || d > maxJobDuration {
			return 0, 0, fmt.Errorf("duration must be between 0 and %s", maxJobDuration)
		}
		duration = d
	}

	return count, duration, nil
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wsClients)
}

// wsMessage は WebSocket で配信するメッセージ
type wsMessage struct {
	Type   string          `json:"type"`
	Event  *events.Event   `json:"event,omitempty"`
	Status *StatusResponse `json:"status,omitempty"`
}

func (s *Server) broadcast(data any) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// broadcastLoop はプールのイベントと定期ステータスを配信する
func (s *Server) broadcastLoop(ctx context.Context) {
	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(wsMessage{Type: "event", Event: &e})
		case <-ticker.C:
			status := s.status()
			s.broadcast(wsMessage{Type: "status", Status: &status})
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("api", "Failed to encode JSON: %v", err)
	}
}
