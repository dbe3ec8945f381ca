// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"food-tracker/internal/logging"
	"food-tracker/internal/models"
	"food-tracker/internal/tracker"
)

const (
	serverName    = "food-tracker"
	serverVersion = "1.0.0"

	// OwnerHeader carries the caller's identity. It is trusted as given.
	OwnerHeader = "X-User-ID"
)

type Config struct {
	Host string
	Port int
}

type toolHandler func(ctx context.Context, owner string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type FoodTrackerServer struct {
	httpServer *http.Server
	service    *tracker.Service
	logger     logging.Logger
	config     *Config
	info       protocol.Implementation
	tools      map[string]toolHandler
}

func NewFoodTrackerServer(cfg *Config, service *tracker.Service, logger logging.Logger) *FoodTrackerServer {
	s := &FoodTrackerServer{
		service: service,
		logger:  logger,
		config:  cfg,
		info: protocol.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
	}
	s.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/", s.handleHTTP)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}
	return s
}

// Handler exposes the routes for embedding and tests.
func (s *FoodTrackerServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *FoodTrackerServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+OwnerHeader)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	ctx := r.Context()
	owner := r.Header.Get(OwnerHeader)
	s.logger.Debug(ctx, "tool call", "tool", request.Name, "owner", owner)

	result, err := handler(ctx, owner, &request)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error(ctx, "tool call failed", "tool", request.Name, "error", err)
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error(ctx, "failed to encode response", "error", err)
	}
}

type healthResponse struct {
	Status string                  `json:"status"`
	Server protocol.Implementation `json:"server"`
	Tools  []string                `json:"tools"`
}

func (s *FoodTrackerServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(healthResponse{Status: "ok", Server: s.info, Tools: s.toolNames()}); err != nil {
		s.logger.Error(r.Context(), "failed to encode health response", "error", err)
	}
}

// statusFor maps a handler error to an HTTP status.
func statusFor(err error) int {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *FoodTrackerServer) Start(ctx context.Context) error {
	s.logger.Info(ctx, "starting food tracker server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *FoodTrackerServer) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *FoodTrackerServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}

// createErrorResult reports a failure the caller should show to the user.
func (s *FoodTrackerServer) createErrorResult(message string) *protocol.CallToolResult {
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: message,
			},
		},
		IsError: true,
	}
}
