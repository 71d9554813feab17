package server

import (
	"context"
	"time"

	"resumatch/internal/analysis"
	"resumatch/internal/catalog"
	"resumatch/internal/config"
	"resumatch/internal/errors"
	"resumatch/internal/observability"
	"resumatch/internal/types"

	"github.com/go-playground/validator/v10"
)

// SuggestionRequest is the body of POST /suggestions
type SuggestionRequest struct {
	ResumeText string `json:"resumeText"` // may be empty when no text could be extracted
	Role       string `json:"role" validate:"required"`
}

// SuggestionResponse is always returned with 200; OK tells success from failure
type SuggestionResponse struct {
	Suggestions string `json:"suggestions"`
	OK          bool   `json:"ok"`
	ErrorCode   string `json:"errorCode,omitempty"`
}

// MatchResponse is the body returned by POST /match
type MatchResponse struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"contentType"`
	ExtractedText string `json:"extractedText"`
	types.MatchResult
	Report string `json:"report"`
}

type RolesResponse struct {
	Roles []types.RoleInfo `json:"roles"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Suggester produces resume suggestions; *ai.Service implements it
type Suggester interface {
	Suggest(ctx context.Context, resumeText, role string) types.SuggestionResult
	Stats() map[string]any
}

// Dependencies are the domain components the HTTP layer exposes
type Dependencies struct {
	Analyzer      *analysis.Analyzer
	Catalog       *catalog.Catalog
	Suggester     Suggester
	Observability *observability.Manager
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	MaxRequestSize int64
	MaxFileSize    int64

	RateLimit   config.RateLimitConfig
	RateLimiter *RateLimiter

	analyzer  *analysis.Analyzer
	catalog   *catalog.Catalog
	suggester Suggester
	om        *observability.Manager
	metrics   *observability.Metrics
	validate  *validator.Validate
	Logger    *errors.Logger
}

// NewServer creates a Server from the loaded configuration
func NewServer(cfg *config.Config, version string, deps Dependencies, logger *errors.Logger) *Server {
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	metrics := deps.Observability.Metrics()

	var rateLimiter *RateLimiter
	if cfg.Server.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.Server.RateLimit.RequestsPerMin,
			cfg.Server.RateLimit.Window,
			cfg.Server.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		Version:         version,
		TLSConfig:       cfg.Server.TLS,
		APIKeys:         apiKeyMap,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxRequestSize:  cfg.Server.MaxRequestSize,
		MaxFileSize:     cfg.App.MaxFileSize,
		RateLimit:       cfg.Server.RateLimit,
		RateLimiter:     rateLimiter,
		analyzer:        deps.Analyzer,
		catalog:         deps.Catalog,
		suggester:       deps.Suggester,
		om:              deps.Observability,
		metrics:         metrics,
		validate:        newValidator(),
		Logger:          logger,
	}
}
