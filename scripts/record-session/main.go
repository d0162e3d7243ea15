// record-session signs in to the live portal, runs the read-only client
// operations and saves the sanitized traffic as a HAR recording for replay
// tests.
//
// Usage:
//
//	PRESTO_USERNAME=... PRESTO_PASSWORD=... go run ./scripts/record-session -scenario=login-balance-activity
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/grez-lucas/presto/internal/config"
	"github.com/grez-lucas/presto/internal/scraper/card/presto"
	"github.com/grez-lucas/presto/internal/scraper/testutil"
)

func main() {
	configPath := flag.String("config", "presto.yaml", "Optional YAML config")
	scenario := flag.String("scenario", "login-balance-activity", "Recording name")
	months := flag.Int("months", 1, "Number of past months of activity to fetch")
	raw := flag.Bool("raw", false, "Save without sanitizing (never commit the result)")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(settings.Log)
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}

	if !settings.Credentials.HasAccount() {
		fmt.Println("PRESTO_USERNAME and PRESTO_PASSWORD must be set (environment or .env)")
		os.Exit(1)
	}

	cfg, err := settings.ClientConfig()
	if err != nil {
		fmt.Printf("Error building client config: %v\n", err)
		os.Exit(1)
	}
	cfg.Logger = logger

	recorder := testutil.NewRecorder(http.DefaultTransport.(*http.Transport).Clone())
	client, err := presto.New(cfg, presto.WithTransport(recorder))
	if err != nil {
		fmt.Printf("Error creating client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := runSession(ctx, client, settings.Credentials, *months, logger); err != nil {
		logger.Error("session failed, saving what was recorded", slog.Any("error", err))
	}

	har := recorder.HAR()
	if !*raw {
		har = testutil.SanitizeHAR(har)
	}

	outPath := filepath.Join("internal", "scraper", "card", "presto", "testdata", "recordings", *scenario+".har.json")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}
	if err := testutil.SaveHAR(outPath, har); err != nil {
		fmt.Printf("Error saving HAR: %v\n", err)
		os.Exit(1)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Method", "URL", "Status"})
	for i, entry := range har.Entries {
		t.AppendRow(table.Row{i + 1, entry.Request.Method, entry.Request.URL, entry.Response.Status})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Printf("Recorded %d requests to %s\n", len(har.Entries), outPath)
	if *raw {
		fmt.Println("⚠️  Raw recording: run scripts/sanitize-har before committing!")
	}
}

func runSession(ctx context.Context, client *presto.Client, creds config.Credentials, months int, logger *slog.Logger) error {
	res, err := client.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if !res.Success {
		return fmt.Errorf("login rejected: %q", res.ErrorCode)
	}
	defer func() {
		if err := client.Logout(ctx); err != nil {
			logger.Warn("logout failed", slog.Any("error", err))
		}
	}()

	balance, err := client.Balance(ctx)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	logger.Info("balance", slog.String("card", balance.CardNumber), slog.String("balance", balance.Balance))

	cards, err := client.Cards(ctx)
	if err != nil {
		return fmt.Errorf("cards: %w", err)
	}
	logger.Info("cards", slog.Int("count", len(cards)))

	now := time.Now()
	for i := range months {
		month := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		records, err := client.ActivityByMonth(ctx, month.Year(), month.Month(), 0)
		if err != nil {
			return fmt.Errorf("activity %s: %w", month.Format("2006-01"), err)
		}
		logger.Info("activity", slog.String("month", month.Format("2006-01")), slog.Int("records", len(records)))
	}

	return nil
}
