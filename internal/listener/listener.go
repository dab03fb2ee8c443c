package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"vega/internal"
	"vega/internal/config"
	"vega/internal/mail"
	gmailconnector "vega/internal/mail/gmail"
	imapconnector "vega/internal/mail/imap"
	"vega/internal/pipeline"
	"vega/internal/storage"
)

type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.ProcessingService
}

func NewService(db *storage.DB, cfg config.Config, processor *pipeline.ProcessingService) *Service {
	return &Service{db: db, cfg: cfg, processor: processor}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	connector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := mail.NewFetchService(s.db, s.cfg.RawMailDir, connector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	processed, analysed, err := s.processor.ProcessPending(ctx, s.cfg.MailListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	if s.cfg.MailListenerAutoExport {
		if err := s.exportProcessed(provider); err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d skipped=%d processed=%d analysed=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, fetchResult.Skipped, processed, analysed)
	return nil
}

func (s *Service) exportProcessed(provider string) error {
	contracts, err := s.db.ListContractsByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, contract := range contracts {
		if contract.Provider != provider {
			continue
		}
		analyses, err := s.db.ListAnalysesForContract(contract.ID)
		if err != nil {
			return err
		}
		for _, analysis := range analyses {
			var report internal.MatchReport
			if err := json.Unmarshal([]byte(analysis.ReportJSON), &report); err != nil {
				return err
			}
			filename := fmt.Sprintf("%d_%d_%s.xlsx", contract.ID, analysis.ID, sanitizeMessageID(contract.MessageID))
			outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
			if err := pipeline.ExportReportToXLSX(report, outputPath); err != nil {
				return err
			}
		}
		_ = s.db.UpdateContractStatus(contract.ID, "exported")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (mail.Connector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
