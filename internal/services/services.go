package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/deepgram/insights/internal/config"
	"github.com/deepgram/insights/internal/connections"
	"github.com/deepgram/insights/internal/services/agent"
	"github.com/deepgram/insights/internal/services/conversation"
	"github.com/deepgram/insights/internal/services/embed"
	"github.com/deepgram/insights/internal/services/page"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

// Options carries everything the services need from configuration
type Options struct {
	AgentEndpoint     string
	AgentTimeout      time.Duration
	IdleTTL           time.Duration
	MaxQuestionLength int
	ReportEmbedURL    string
	CalendarEnabled   bool
	CalendarEmbed     string
	PageTitle         string
	FooterText        string
	// HTTPClient overrides the client used to reach the agent
	HTTPClient *http.Client
	WSTimeouts connections.TimeoutConfig
}

// OptionsFromEnv reads Options from the environment
func OptionsFromEnv() Options {
	return Options{
		AgentEndpoint:     config.GetAgentEndpoint(),
		AgentTimeout:      config.GetAgentTimeout(),
		IdleTTL:           config.GetConversationIdleTTL(),
		MaxQuestionLength: config.GetMaxQuestionLength(),
		ReportEmbedURL:    config.GetReportEmbedURL(),
		CalendarEnabled:   config.IsCalendarEnabled(),
		CalendarEmbed:     config.GetCalendarEmbed(),
		PageTitle:         config.GetPageTitle(),
		FooterText:        config.GetFooterText(),
		WSTimeouts:        connections.DefaultTimeouts,
	}
}

type Services struct {
	agentService      *agent.Service
	registry          *conversation.Registry
	composer          *page.Composer
	connectionManager *connections.Manager
	maxQuestionLength int
}

// InitializeServices initializes all required services
func InitializeServices(opts Options) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	agentService := agent.NewService(opts.AgentEndpoint, agent.WithHTTPClient(client))
	if !agentService.IsConfigured() {
		log.Warn().Msg("Agent endpoint is not configured - questions will be answered with a setup message")
	}

	registry := conversation.NewRegistry(agentService, conversation.Options{
		Timeout: opts.AgentTimeout,
		IdleTTL: opts.IdleTTL,
	})

	composerOpts := page.Options{
		Title:  opts.PageTitle,
		Footer: opts.FooterText,
		Report: embed.NewReportPanel(opts.ReportEmbedURL),
	}
	if opts.CalendarEnabled {
		composerOpts.Calendar = embed.NewCalendarPanel(opts.CalendarEmbed)
	}
	composer, err := page.NewComposer(composerOpts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize page composer")
		return nil, fmt.Errorf("failed to initialize page composer: %w", err)
	}

	timeouts := opts.WSTimeouts
	if timeouts == (connections.TimeoutConfig{}) {
		timeouts = connections.DefaultTimeouts
	}

	maxLen := opts.MaxQuestionLength
	if maxLen <= 0 {
		maxLen = config.DefaultMaxQuestionLength
	}

	log.Info().Msg("All services initialized successfully")

	return &Services{
		agentService:      agentService,
		registry:          registry,
		composer:          composer,
		connectionManager: connections.NewManager(timeouts),
		maxQuestionLength: maxLen,
	}, nil
}

func (s *Services) GetAgentService() *agent.Service {
	return s.agentService
}

func (s *Services) GetRegistry() *conversation.Registry {
	return s.registry
}

func (s *Services) GetComposer() *page.Composer {
	return s.composer
}

func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connectionManager
}

// MaxQuestionLength is the longest question, in characters, the API accepts
func (s *Services) MaxQuestionLength() int {
	return s.maxQuestionLength
}

// Shutdown closes push connections, then lets in-flight questions finish
// until ctx expires and closes every conversation
func (s *Services) Shutdown(ctx context.Context) error {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	s.connectionManager.CloseAll()
	if err := s.registry.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close conversations: %w", err)
	}
	return nil
}
