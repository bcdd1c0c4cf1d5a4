package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/naas"
	"github.com/aretw0/naas/internal/logging"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/lifecycle"
	"github.com/aretw0/naas/pkg/ports"
	"github.com/aretw0/naas/pkg/tact"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// TonesURI is the resource listing the accepted tones.
const TonesURI = "naas://tones"

// SayNoArgs are the arguments of the say_no tool.
type SayNoArgs struct {
	Context string `json:"context"`
	Tone    string `json:"tone,omitempty"`
}

// SayNoResult is the structured output of say_no.
type SayNoResult struct {
	Response string      `json:"response" jsonschema_description:"The generated refusal"`
	Tone     domain.Tone `json:"tone" jsonschema_description:"The tone that was used"`
	Score    int         `json:"score" jsonschema_description:"Tact score from 0 to 100"`
}

// ScoreArgs are the arguments of the score_tact tool.
type ScoreArgs struct {
	Text string `json:"text"`
}

// Server exposes refusal generation and tact scoring as MCP tools.
type Server struct {
	relay     ports.Relay
	tones     domain.ToneSet
	logger    *slog.Logger
	timeout   time.Duration
	hooks     []domain.LifecycleHooks
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithTones sets the accepted tones.
func WithTones(tones domain.ToneSet) Option {
	return func(s *Server) {
		s.tones = tones
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRelayTimeout bounds each say_no call.
func WithRelayTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithLifecycleHooks observes every say_no lifecycle.
func WithLifecycleHooks(hooks ...domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = append(s.hooks, hooks...)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(relay ports.Relay, opts ...Option) *Server {
	s := &Server{
		relay:     relay,
		tones:     domain.DefaultToneSet(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("naas-mcp", strings.TrimSpace(naas.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sayNo := mcp.NewTool("say_no",
		mcp.WithDescription("Write a polite, tactful refusal for the described situation."),
		mcp.WithString("context", mcp.Required(), mcp.Description("What the user is being asked to do")),
		mcp.WithString("tone", mcp.Description("Tone of the refusal"), mcp.Enum(s.tones.Strings()...)),
		mcp.WithOutputSchema[SayNoResult](),
	)
	s.mcpServer.AddTool(sayNo, mcp.NewStructuredToolHandler(s.handleSayNo))

	score := mcp.NewTool("score_tact",
		mcp.WithDescription("Rate how tactful a refusal reads, from 0 to 100."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text to score")),
		mcp.WithOutputSchema[tact.Analysis](),
	)
	s.mcpServer.AddTool(score, mcp.NewStructuredToolHandler(s.handleScore))
}

func (s *Server) handleSayNo(ctx context.Context, _ mcp.CallToolRequest, args SayNoArgs) (SayNoResult, error) {
	input, err := lifecycle.SanitizeInput(args.Context)
	if err != nil {
		s.logger.Warn("MCP say_no: Input rejected", "err", err, "size", len(args.Context))
		return SayNoResult{}, fmt.Errorf("input rejected: %w", err)
	}

	c := lifecycle.New(s.relay,
		lifecycle.WithTones(s.tones),
		lifecycle.WithLogger(s.logger),
		lifecycle.WithRelayTimeout(s.timeout),
		lifecycle.WithLifecycleHooks(s.hooks...),
	)
	if args.Tone != "" {
		if err := c.SetTone(args.Tone); err != nil {
			return SayNoResult{}, err
		}
	}
	c.SetInput(input)

	snap, err := c.Submit(ctx)
	if err != nil {
		// The snapshot carries the message a user would see.
		return SayNoResult{}, errors.New(snap.ErrorMessage)
	}
	return SayNoResult{
		Response: snap.Result.Response,
		Tone:     snap.Result.Tone,
		Score:    snap.Result.Score,
	}, nil
}

func (s *Server) handleScore(_ context.Context, _ mcp.CallToolRequest, args ScoreArgs) (tact.Analysis, error) {
	if strings.TrimSpace(args.Text) == "" {
		return tact.Analysis{}, errors.New("text is required")
	}
	return tact.Analyze(args.Text), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TonesURI, "Accepted tones",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(map[string]any{
			"tones":   s.tones.Strings(),
			"default": s.tones.Default(),
		})
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TonesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
