package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/grez-lucas/presto/internal/config"
	browserutil "github.com/grez-lucas/presto/internal/scraper/browser"
	"github.com/grez-lucas/presto/internal/scraper/card/presto"
)

// Sign-in form fields on the homepage modal
const (
	fieldUsername = "#SignIn_Username"
	fieldPassword = "#SignIn_Password"
	submitSignIn  = "#signwithaccount button[type=submit]"
)

// Pages to capture, in order
var capturePages = []PageCapture{
	{Name: "homepage", Path: "/home", Instructions: "Wait for the homepage to load (don't sign in yet)"},
	{Name: "dashboard_multiple_cards", Path: "/en/dashboard", Instructions: "Sign in to an account with more than one card", SignIn: true},
	{Name: "dashboard_single_card", Instructions: "Switch to an account with exactly one card (or skip)"},
	{Name: "dashboard_no_card", Instructions: "Switch to an account with no card (or skip)"},
	{Name: "activity", Instructions: "Open Card Activity and pick a month with transactions"},
	{Name: "activity_empty", Instructions: "Pick a month with no transactions (or skip)"},
	{Name: "dashboard_logged_out", Path: "/en/dashboard", Instructions: "Sign out, then press ENTER"},
}

type PageCapture struct {
	Name         string
	Path         string
	Instructions string
	SignIn       bool
}

func main() {
	configPath := flag.String("config", "presto.yaml", "Optional YAML config")
	outputDir := flag.String("output", "", "Output directory (default: internal/scraper/card/presto/testdata/fixtures)")
	chromeBin := flag.String("chrome", "", "Chrome binary (default: let Rod find one)")
	autoSignIn := flag.Bool("auto-signin", false, "Type the configured credentials into the sign-in form")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	baseURL := settings.Portal.BaseURL
	if baseURL == "" {
		baseURL = presto.DefaultBaseURL
	}

	outDir := *outputDir
	if outDir == "" {
		outDir = filepath.Join("internal", "scraper", "card", "presto", "testdata", "fixtures")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║           PRESTO FIXTURE CAPTURE TOOL                          ║")
	fmt.Println("╠════════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Portal: %-52s  ║\n", baseURL)
	fmt.Printf("║  Output: %-52s  ║\n", outDir)
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Println()

	browser, err := browserutil.Launch(browserutil.LaunchOptions{Bin: *chromeBin, Headless: false})
	if err != nil {
		fmt.Printf("Error launching browser: %v\n", err)
		os.Exit(1)
	}
	defer browser.MustClose()

	page, err := browserutil.NewPage(browser, nil)
	if err != nil {
		fmt.Printf("Error opening page: %v\n", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("📋 Instructions:")
	fmt.Println("   - A browser window has opened")
	fmt.Println("   - Follow the prompts below")
	fmt.Println("   - Press ENTER after completing each step")
	fmt.Println("   - Type 'skip' to skip a page")
	fmt.Println("   - Type 'quit' to exit")
	fmt.Println()

	for _, capture := range capturePages {
		fmt.Println("────────────────────────────────────────────────────────────────")
		fmt.Printf("📄 Capturing: %s.html\n", capture.Name)

		if capture.SignIn && *autoSignIn {
			if err := signIn(page, baseURL, settings.Credentials); err != nil {
				fmt.Printf("   ⚠️  Auto sign-in failed, sign in manually: %v\n", err)
			}
		} else if capture.Path != "" {
			if err := page.Navigate(baseURL + capture.Path); err != nil {
				fmt.Printf("   ⚠️  Could not open %s: %v\n", capture.Path, err)
			}
		}

		fmt.Printf("📝 Instructions: %s\n", capture.Instructions)
		fmt.Print("   Press ENTER when ready (or 'skip'/'quit'): ")

		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(strings.ToLower(input))

		if input == "quit" {
			fmt.Println("\n👋 Exiting...")
			break
		}

		if input == "skip" {
			fmt.Printf("   ⏭️  Skipped %s\n\n", capture.Name)
			continue
		}

		saved, err := browserutil.SavePage(page, outDir, capture.Name)
		if err != nil {
			fmt.Printf("   ❌ Error capturing page: %v\n\n", err)
			continue
		}

		if saved.Screenshot != "" {
			fmt.Printf("   📸 Screenshot: %s\n", saved.Screenshot)
		}
		fmt.Printf("   ✅ Saved: %s\n", saved.HTMLPath)
		fmt.Printf("   🔗 URL: %s\n\n", saved.URL)
	}

	saveMetadata(outDir, baseURL)

	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("✅ Capture complete!")
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Sanitize sensitive data before committing!")
	fmt.Println("   Run: go run ./scripts/sanitize-fixtures -dir=" + outDir)
	fmt.Println("════════════════════════════════════════════════════════════════")
}

// signIn opens the homepage and submits the account sign-in form.
func signIn(page *rod.Page, baseURL string, creds config.Credentials) error {
	if !creds.HasAccount() {
		return fmt.Errorf("PRESTO_USERNAME and PRESTO_PASSWORD are not set")
	}

	if err := page.Navigate(baseURL + "/home"); err != nil {
		return fmt.Errorf("open homepage: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for homepage: %w", err)
	}

	if err := browserutil.FillField(page, fieldUsername, creds.Username, true); err != nil {
		return err
	}
	if err := browserutil.FillField(page, fieldPassword, creds.Password, true); err != nil {
		return err
	}

	button, err := page.Timeout(10 * time.Second).Element(submitSignIn)
	if err != nil {
		return fmt.Errorf("sign-in button not found: %w", err)
	}
	if err := button.CancelTimeout().Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click sign-in: %w", err)
	}

	return page.Timeout(30*time.Second).WaitElementsMoreThan(presto.SelectorSignOut, 0)
}

func saveMetadata(outDir, baseURL string) {
	metadata := fmt.Sprintf(`# Fixture Metadata
portal: %s
captured_at: %s
captured_by: %s

## Files
See .html files in this directory.
Screenshots (.png) provided for visual reference.

## Notes
- These fixtures should be sanitized before committing
- Update when the portal markup changes
- Re-run capture if parser tests start failing, then run scripts/probe-selectors
`, baseURL, time.Now().Format(time.RFC3339), os.Getenv("USER"))

	metaPath := filepath.Join(outDir, "README.md")
	if err := os.WriteFile(metaPath, []byte(metadata), 0o644); err != nil {
		fmt.Printf("⚠️  Error saving metadata: %v\n", err)
	}
}
