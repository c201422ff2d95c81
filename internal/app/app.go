package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lyh9003/stock-report/internal/config"
	"github.com/lyh9003/stock-report/internal/infrastructure/llm"
	"github.com/lyh9003/stock-report/internal/infrastructure/naver"
	"github.com/lyh9003/stock-report/internal/infrastructure/pdftext"
	"github.com/lyh9003/stock-report/internal/ledger"
	"github.com/lyh9003/stock-report/internal/logging"
	"github.com/lyh9003/stock-report/internal/ports"
	"github.com/lyh9003/stock-report/internal/summarize"
	"github.com/lyh9003/stock-report/internal/usecase"
)

// Application wires configuration to the one-shot ingestion run. All
// dependencies are scoped to a single run; nothing lives in package state.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout()}
	source := naver.NewSource(httpClient, cfg.HTTP.UserAgent, baseLogger.With("component", "source"))

	var completion ports.CompletionClient
	if cfg.OpenAI.APIKey != "" {
		completion = llm.NewOpenAIClient(cfg.OpenAI)
	}
	summarizer := summarize.New(
		completion,
		summarize.Basis(cfg.Summarizer.OneLineBasis),
		baseLogger.With("component", "summarizer"),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:            source,
		Extractor:         pdftext.New(),
		Summarizer:        summarizer,
		Ledger:            ledger.NewCSVLedger(cfg.Dataset, baseLogger.With("component", "ledger")),
		Endpoints:         cfg.Endpoints,
		SeenStopThreshold: cfg.Scan.SeenStopThreshold,
		Logger:            baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline}
}

// Run performs a single batch ingestion run.
func (a *Application) Run(ctx context.Context) error {
	return a.pipeline.Run(ctx)
}
