// probe-selectors opens PRESTO pages in Chrome and reports which of the
// extractor's CSS selectors match. Run it when parser tests pass but the live
// client returns empty values: a selector that stops matching means the
// portal markup changed.
//
// Usage:
//
//	go run ./scripts/probe-selectors
//	go run ./scripts/probe-selectors -har=internal/scraper/card/presto/testdata/recordings/login-balance-activity.har.json
//
// Against the live portal the script prompts you to reach each page (sign in
// for the dashboard). With -har the pages are served from the recording and
// no prompt is shown.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-rod/rod"
	"github.com/jedib0t/go-pretty/v6/table"

	browserutil "github.com/grez-lucas/presto/internal/scraper/browser"
	"github.com/grez-lucas/presto/internal/scraper/card/presto"
	"github.com/grez-lucas/presto/internal/scraper/testutil"
)

// selectorProbe is a known CSS selector to search for on a page.
type selectorProbe struct {
	Name     string
	Selector string
	// Optional probes depend on account state and never count as missing.
	Optional bool
}

// pageToInspect defines a page the user should navigate to.
type pageToInspect struct {
	Name         string
	Path         string
	Instructions string
	Probes       []selectorProbe
}

var prestoPages = []pageToInspect{
	{
		Name:         "Homepage",
		Path:         "/home",
		Instructions: "Wait for the homepage (don't sign in yet)",
		Probes: []selectorProbe{
			{"Sign-in token", presto.SelectorSignInToken, false},
		},
	},
	{
		Name:         "Dashboard",
		Path:         "/en/dashboard",
		Instructions: "Sign in and wait for the dashboard",
		Probes: []selectorProbe{
			{"Sign-out link", presto.SelectorSignOut, false},
			{"Card summary", presto.SelectorCardSummary, false},
			{"No-card message", presto.SelectorNoCardMessage, true},
			{"Card number", presto.SelectorCardNumber, false},
			{"Card name", presto.SelectorCardName, false},
			{"Balance", presto.SelectorBalance, false},
			{"Tooltip labels", presto.SelectorTooltipLabels, false},
			{"Other cards", presto.SelectorOtherCards, true},
			{"Form tokens", presto.SelectorFormToken, false},
		},
	},
	{
		Name:         "Card activity",
		Instructions: "Open Card Activity and pick a month with transactions",
		Probes: []selectorProbe{
			{"Activity rows", presto.SelectorActivityRows, false},
		},
	},
}

func main() {
	baseURL := flag.String("base-url", presto.DefaultBaseURL, "Portal base URL")
	harPath := flag.String("har", "", "Serve pages from a HAR recording instead of the live portal")
	chromeBin := flag.String("chrome", "", "Chrome binary (default: let Rod find one)")
	flag.Parse()

	var hijack func(*rod.Hijack)
	if *harPath != "" {
		har, err := testutil.LoadHAR(*harPath)
		if err != nil {
			fmt.Printf("Error loading HAR: %v\n", err)
			os.Exit(1)
		}
		hijack = testutil.NewReplayer(har, testutil.WithVerbose(true)).Middleware()
	}

	fmt.Println("================================================================")
	fmt.Println("  PRESTO SELECTOR PROBE")
	fmt.Println("================================================================")
	fmt.Println()

	browser, err := browserutil.Launch(browserutil.LaunchOptions{Bin: *chromeBin, Headless: hijack != nil})
	if err != nil {
		fmt.Printf("Error launching browser: %v\n", err)
		os.Exit(1)
	}
	defer browser.MustClose()

	page, err := browserutil.NewPage(browser, hijack)
	if err != nil {
		fmt.Printf("Error opening page: %v\n", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	missing := 0

	for _, pg := range prestoPages {
		fmt.Println("----------------------------------------------------------------")
		fmt.Printf("PAGE: %s\n", pg.Name)

		if pg.Path != "" {
			if err := page.Navigate(*baseURL + pg.Path); err != nil {
				fmt.Printf("  Could not open %s: %v\n", pg.Path, err)
			}
		}

		if hijack == nil {
			fmt.Printf("  -> %s\n", pg.Instructions)
			fmt.Print("  Press ENTER when ready (or 'skip'/'quit'): ")

			input, _ := reader.ReadString('\n')
			input = strings.TrimSpace(strings.ToLower(input))

			if input == "quit" {
				break
			}
			if input == "skip" {
				fmt.Printf("  Skipped.\n\n")
				continue
			}
		} else if pg.Path == "" {
			fmt.Printf("  Skipped: not reachable by URL.\n\n")
			continue
		}

		missing += inspectPage(page, pg.Probes)
		fmt.Println()
	}

	fmt.Println("================================================================")
	if missing > 0 {
		fmt.Printf("  %d selector(s) matched nothing. Update selectors.go and the fixtures.\n", missing)
		fmt.Println("================================================================")
		os.Exit(1)
	}
	fmt.Println("  All selectors matched.")
	fmt.Println("================================================================")
}

// inspectPage prints a table of probe results and returns how many required
// probes matched nothing.
func inspectPage(page *rod.Page, probes []selectorProbe) int {
	if info, err := page.Info(); err == nil {
		fmt.Printf("\n  URL: %s\n\n", info.URL)
	}

	selectors := make([]string, len(probes))
	for i, probe := range probes {
		selectors[i] = probe.Selector
	}

	reports, err := browserutil.ProbeSelectors(page, selectors)
	if err != nil {
		fmt.Printf("  Probe failed: %v\n", err)
		return len(probes)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Status", "Probe", "Selector", "Matches"})

	missing := 0
	for i, report := range reports {
		status := "FOUND"
		switch {
		case report.Found():
		case probes[i].Optional:
			status = "ABSENT"
		default:
			status = "MISSING"
			missing++
		}
		t.AppendRow(table.Row{status, probes[i].Name, truncate(report.Selector, 55), report.Count})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()

	return missing
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
