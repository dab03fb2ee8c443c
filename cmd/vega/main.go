package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vega/internal"
	"vega/internal/config"
	"vega/internal/listener"
	"vega/internal/llm"
	"vega/internal/mail"
	gmailconnector "vega/internal/mail/gmail"
	imapconnector "vega/internal/mail/imap"
	"vega/internal/pipeline"
	"vega/internal/reftables"
	"vega/internal/storage"
	"vega/internal/textsource"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "analyse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		pdfPath := fs.String("pdf", "", "contract pdf path")
		review := fs.Bool("review", false, "run the anomaly review")
		out := fs.String("out", "", "optional output xlsx path")
		asJSON := fs.Bool("json", false, "print the report as JSON only")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*pdfPath) == "" {
			must(fmt.Errorf("--pdf is required"))
		}

		blob, err := os.ReadFile(*pdfPath)
		must(err)
		analysisService, err := makeAnalysisService(cfg)
		must(err)

		analysis, err := analysisService.AnalysePDF(context.Background(), filepath.Base(*pdfPath), blob, *review)
		must(err)

		if *asJSON {
			fmt.Println(analysis.ReportJSON)
		} else {
			fmt.Printf("analysed %s source=%s\n", analysis.PDFName, analysis.Report.Source)
			fmt.Println(analysis.ReportJSON)
			if analysis.Review != nil {
				fmt.Println("--- review ---")
				fmt.Println(*analysis.Review)
			}
		}

		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportReportToXLSX(analysis.Report, *out))
			fmt.Printf("exported report to %s\n", *out)
		}
	case "tables:show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("table", "", "show only this table")
		limit := fs.Int("limit", 0, "preview up to n rows per table")
		_ = fs.Parse(os.Args[2:])
		set, err := reftables.LoadDir(cfg.TablesDir)
		must(err)
		for _, table := range set.All() {
			if *name != "" && table.Name != *name {
				continue
			}
			fmt.Printf("%s rows=%d columns=%s\n", table.Name, len(table.Rows), strings.Join(table.Columns, ","))
			for i, row := range table.Rows {
				if i >= *limit {
					break
				}
				fmt.Printf("  %v\n", row)
			}
		}
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := mail.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d skipped=%d\n", *provider, result.Fetched, result.Stored, result.Skipped)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		review := fs.Bool("review", false, "run the anomaly review per analysed pdf")
		_ = fs.Parse(os.Args[2:])
		if *review {
			cfg.MailListenerReview = true
		}
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		analysisService, err := makeAnalysisService(cfg)
		must(err)
		processor := pipeline.NewProcessingService(db, cfg, analysisService)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(context.Background(), *provider, *messageID)
			must(err)
			fmt.Printf("processed contract id=%d analysed=%d\n", res.ContractID, res.Analysed)
			return
		}
		processed, analysed, err := processor.ProcessPending(context.Background(), *batch, *provider)
		must(err)
		fmt.Printf("processed pending contracts=%d analysed=%d\n", processed, analysed)
	case "mail:listen":
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		analysisService, err := makeAnalysisService(cfg)
		must(err)
		processor := pipeline.NewProcessingService(db, cfg, analysisService)
		s := listener.NewService(db, cfg, processor)
		must(s.Run(context.Background()))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		analysisID := fs.Int("analysisId", 0, "internal analysis id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *analysisID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--analysisId and --out are required"))
		}
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		row, err := db.GetAnalysisByID(*analysisID)
		must(err)
		if row == nil {
			must(fmt.Errorf("no analysis with id=%d", *analysisID))
		}
		var report internal.MatchReport
		must(json.Unmarshal([]byte(row.ReportJSON), &report))
		must(pipeline.ExportReportToXLSX(report, *out))
		fmt.Printf("exported analysis %d to %s\n", *analysisID, *out)
	default:
		usage()
		os.Exit(1)
	}
}

func makeAnalysisService(cfg config.Config) (*pipeline.AnalysisService, error) {
	tables, err := reftables.LoadDir(cfg.TablesDir)
	if err != nil {
		return nil, err
	}

	// The client checks its credential at call time: without a key the
	// remote extractor fails over to the heuristic, a requested review
	// reports the missing credential instead of silently skipping.
	client := llm.NewClient(cfg)
	extractors := pipeline.ExtractorSet{Remote: client, Heuristic: pipeline.HeuristicExtractor{}}

	return pipeline.NewAnalysisService(cfg, textsource.New(cfg), extractors, tables, client), nil
}

func makeConnector(cfg config.Config, provider string) (mail.Connector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: vega <command>")
	fmt.Println("commands:")
	fmt.Println("  analyse --pdf=contract.pdf [--review] [--out=report.xlsx] [--json]")
	fmt.Println("  tables:show [--table=clienti] [--limit=5]")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20] [--review]")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx --analysisId=1 --out=./out/report.xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
