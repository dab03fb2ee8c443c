package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"vega/internal"
	"vega/internal/config"
	"vega/internal/mail"
	"vega/internal/reftables"
	"vega/internal/storage"
	"vega/internal/util"
)

// TextSource yields the plain text of a contract PDF.
type TextSource interface {
	Text(ctx context.Context, blob []byte) (string, error)
}

// Reviewer asks the hosted model for free-text anomaly findings.
type Reviewer interface {
	Review(ctx context.Context, contractText, reportJSON string) (string, error)
}

// Analysis is the outcome of one PDF run.
type Analysis struct {
	PDFName    string
	Text       string
	Report     internal.MatchReport
	ReportJSON string
	Review     *string
}

// AnalysisService runs the whole pipeline for one PDF: text extraction,
// client-record extraction, five-table matching, report assembly and the
// optional anomaly review. Synchronous; one document at a time.
type AnalysisService struct {
	cfg        config.Config
	source     TextSource
	extractors ExtractorSet
	matcher    *Matcher
	reviewer   Reviewer
}

func NewAnalysisService(cfg config.Config, source TextSource, extractors ExtractorSet, tables reftables.Set, reviewer Reviewer) *AnalysisService {
	return &AnalysisService{
		cfg:        cfg,
		source:     source,
		extractors: extractors,
		matcher:    NewMatcher(tables),
		reviewer:   reviewer,
	}
}

func (s *AnalysisService) AnalysePDF(ctx context.Context, name string, blob []byte, withReview bool) (Analysis, error) {
	text, err := s.source.Text(ctx, blob)
	if err != nil {
		return Analysis{}, fmt.Errorf("%s: %w", name, err)
	}

	window := text
	if s.cfg.AnalyseWindow != "full" {
		window = HeaderWindow(text, s.cfg.HeaderMaxWords)
	}
	rec, source := s.extractors.Parse(ctx, window)

	clientName := ""
	if rec.ClientName != nil {
		clientName = *rec.ClientName
	}
	chain := s.matcher.Match(clientName)

	report, err := AssembleReport(rec, source, chain)
	if err != nil {
		return Analysis{}, fmt.Errorf("%s: assemble report: %w", name, err)
	}
	reportJSON, err := MarshalReport(report)
	if err != nil {
		return Analysis{}, fmt.Errorf("%s: marshal report: %w", name, err)
	}

	analysis := Analysis{PDFName: name, Text: text, Report: report, ReportJSON: reportJSON}

	if withReview && s.reviewer != nil {
		review, err := s.reviewer.Review(ctx, text, reportJSON)
		if err != nil {
			// Review failures surface as-is; no fallback text.
			return analysis, fmt.Errorf("%s: anomaly review: %w", name, err)
		}
		analysis.Review = &review
	}

	return analysis, nil
}

// ProcessingService drives the mailbox intake: stored contract messages are
// detected, their PDF attachments analysed and the results journaled.
type ProcessingService struct {
	db       *storage.DB
	cfg      config.Config
	analysis *AnalysisService
}

func NewProcessingService(db *storage.DB, cfg config.Config, analysis *AnalysisService) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, analysis: analysis}
}

type ProcessResult struct {
	ContractID int
	Analysed   int
}

func (s *ProcessingService) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	row, err := s.db.MustContractByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessContract(ctx, row)
}

func (s *ProcessingService) ProcessPending(ctx context.Context, limit int, provider string) (int, int, error) {
	pending, err := s.db.ListContractsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processed := 0
	analysed := 0
	for _, row := range pending {
		if provider != "" && row.Provider != provider {
			continue
		}
		res, err := s.ProcessContract(ctx, row)
		if err != nil {
			_ = s.db.UpdateContractStatus(row.ID, "error")
			return processed, analysed, err
		}
		processed++
		analysed += res.Analysed
	}
	return processed, analysed, nil
}

func (s *ProcessingService) ProcessContract(ctx context.Context, row internal.ContractRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(row.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	env, err := mail.ParseEnvelope(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	names := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		names = append(names, att.Name)
	}
	detect := DetectContractMail(firstNonEmpty(env.Subject, row.Subject), env.BodyText, names)

	if err := s.db.ClearContractAnalyses(row.ID); err != nil {
		return ProcessResult{}, err
	}

	if !detect.IsContract {
		_ = s.db.UpdateContractStatus(row.ID, "skipped")
		s.recordRun(row.ID, start, map[string]int{"attachments": len(env.Attachments), "analysed": 0})
		return ProcessResult{ContractID: row.ID}, nil
	}

	analysed := 0
	for _, att := range env.Attachments {
		analysis, err := s.analysis.AnalysePDF(ctx, att.Name, att.Content, s.cfg.MailListenerReview)
		if err != nil {
			return ProcessResult{ContractID: row.ID, Analysed: analysed}, err
		}
		clientJSON, err := json.Marshal(analysis.Report.Client)
		if err != nil {
			return ProcessResult{ContractID: row.ID, Analysed: analysed}, err
		}
		contractID := row.ID
		if _, err := s.db.InsertAnalysis(&contractID, att.Name, string(clientJSON), analysis.ReportJSON, analysis.Review); err != nil {
			return ProcessResult{ContractID: row.ID, Analysed: analysed}, err
		}
		analysed++
	}

	if err := s.db.UpdateContractStatus(row.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	s.recordRun(row.ID, start, map[string]int{"attachments": len(env.Attachments), "analysed": analysed})

	return ProcessResult{ContractID: row.ID, Analysed: analysed}, nil
}

func (s *ProcessingService) recordRun(contractID int, start time.Time, counts map[string]int) {
	timings, _ := json.Marshal(map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())})
	countsJSON, _ := json.Marshal(counts)
	_ = s.db.InsertRun(traceID(), util.IntPtr(contractID), string(timings), string(countsJSON))
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
