// sanitize-har removes sensitive data from HAR files before committing.
//
// Usage:
//
//	go run ./scripts/sanitize-har -provider=presto -scenario=login-balance-activity
//	go run ./scripts/sanitize-har -input=recording.har.json -output=sanitized.har.json
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grez-lucas/presto/internal/scraper/testutil"
)

func main() {
	// Conventional path flags
	provider := flag.String("provider", "presto", "Portal provider directory under internal/scraper/card")
	scenario := flag.String("scenario", "", "Scenario name (e.g., login-balance-activity)")

	// Direct path flags
	inputPath := flag.String("input", "", "Input HAR file path (Chrome export or simplified)")
	outputPath := flag.String("output", "", "Output HAR file path (defaults to input path)")

	dryRun := flag.Bool("dry-run", false, "Show what would be redacted without modifying")

	flag.Parse()

	var inPath, outPath string

	switch {
	case *scenario != "":
		inPath = filepath.Join("internal", "scraper", "card", strings.ToLower(*provider), "testdata", "recordings", *scenario+".har.json")
		outPath = inPath
	case *inputPath != "":
		inPath = *inputPath
		outPath = *inputPath
		if *outputPath != "" {
			outPath = *outputPath
		}
	default:
		printUsage()
		os.Exit(1)
	}

	if _, err := os.Stat(inPath); os.IsNotExist(err) {
		fmt.Printf("Error: Input file not found: %s\n", inPath)
		os.Exit(1)
	}

	fmt.Printf("Loading HAR file: %s\n", inPath)

	// Chrome exports are converted to the simplified format on load
	har, err := testutil.LoadHAR(inPath)
	if err != nil {
		fmt.Printf("Error loading HAR: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d entries\n", len(har.Entries))

	sanitized := testutil.SanitizeHAR(har)
	changes := diffEntries(har, sanitized)

	total := 0
	for _, c := range changes {
		total += len(c.Fields)
	}
	fmt.Printf("Redacted %d sensitive values in %d entries\n", total, len(changes))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes written.")
		printRedactionSummary(changes)
		return
	}

	if err := testutil.SaveHAR(outPath, sanitized); err != nil {
		fmt.Printf("Error saving HAR: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sanitized HAR saved to: %s\n", outPath)
	fmt.Println("\nSafe to commit!")
}

func printUsage() {
	fmt.Println("sanitize-har - Remove sensitive data from HAR files before committing")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  go run ./scripts/sanitize-har -scenario=login-balance-activity")
	fmt.Println("  go run ./scripts/sanitize-har -input=recording.har.json")
	fmt.Println("  go run ./scripts/sanitize-har -input=in.har.json -output=out.har.json")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -provider  Provider directory (default presto)")
	fmt.Println("  -scenario  Recording name under testdata/recordings")
	fmt.Println("  -input     Input HAR file path")
	fmt.Println("  -output    Output HAR file path (defaults to input)")
	fmt.Println("  -dry-run   Show redactions without modifying file")
}

// entryChange lists what was redacted in one entry.
type entryChange struct {
	Index  int
	Method string
	URL    string
	Fields []string
}

func diffEntries(original, sanitized *testutil.HARLog) []entryChange {
	var changes []entryChange

	for i := range original.Entries {
		if i >= len(sanitized.Entries) {
			break
		}
		orig := original.Entries[i]
		san := sanitized.Entries[i]

		var fields []string
		if orig.Request.URL != san.Request.URL {
			fields = append(fields, "URL query parameters")
		}
		fields = append(fields, headerChanges("Request", orig.Request.Headers, san.Request.Headers)...)
		if orig.Request.Body != san.Request.Body {
			fields = append(fields, "Request body")
		}
		fields = append(fields, headerChanges("Response", orig.Response.Headers, san.Response.Headers)...)
		if orig.Response.Content.Text != san.Response.Content.Text {
			fields = append(fields, "Response body")
		}

		if len(fields) > 0 {
			changes = append(changes, entryChange{
				Index:  i + 1,
				Method: orig.Request.Method,
				URL:    orig.Request.URL,
				Fields: fields,
			})
		}
	}

	return changes
}

func headerChanges(side string, orig, san []testutil.HARHeader) []string {
	var fields []string
	for j, h := range orig {
		if j < len(san) && h.Value != san[j].Value {
			fields = append(fields, fmt.Sprintf("%s header '%s'", side, h.Name))
		}
	}
	return fields
}

func printRedactionSummary(changes []entryChange) {
	fmt.Println("\nRedaction Summary:")
	fmt.Println("==================")

	for _, c := range changes {
		fmt.Printf("\nEntry %d: %s %s\n", c.Index, c.Method, truncateURL(c.URL))
		for _, f := range c.Fields {
			fmt.Printf("  - %s redacted\n", f)
		}
	}
}

func truncateURL(url string) string {
	if len(url) > 80 {
		return url[:77] + "..."
	}
	return url
}
