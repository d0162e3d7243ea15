// sanitize-fixtures masks card numbers, names, e-mails and tokens in captured
// HTML fixtures.
//
// Usage:
//
//	go run ./scripts/sanitize-fixtures [-dir=internal/scraper/card/presto/testdata/fixtures] [-dry-run]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grez-lucas/presto/internal/scraper/testutil"
)

func main() {
	dir := flag.String("dir", filepath.Join("internal", "scraper", "card", "presto", "testdata", "fixtures"), "Fixture directory")
	dryRun := flag.Bool("dry-run", false, "Show what would be changed without modifying files")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*dir, "*.html"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No HTML files found in %s\n", *dir)
		os.Exit(1)
	}

	fmt.Printf("🔒 Sanitizing fixtures in %s\n", *dir)
	if *dryRun {
		fmt.Println("    (DRY RUN - no files will be modified)")
	}
	fmt.Println()

	for _, file := range files {
		sanitizeFile(file, *dryRun)
	}

	fmt.Println()
	fmt.Println("✅ Sanitization complete!")
	if *dryRun {
		fmt.Println("    Run without -dry-run to apply changes")
	}
}

func sanitizeFile(path string, dryRun bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ Error reading %s: %v\n", path, err)
		return
	}

	sanitized, redactions := testutil.SanitizeContent(string(content))
	filename := filepath.Base(path)

	if sanitized == string(content) {
		fmt.Printf("📄 %s: No sensitive data found\n", filename)
		return
	}

	fmt.Printf("📄 %s: Found sensitive data\n", filename)
	for _, r := range redactions {
		fmt.Printf("  - %s: %d matched\n", r.Description, r.Matches)
	}

	if dryRun {
		return
	}

	if err := os.WriteFile(path, []byte(sanitized), 0o644); err != nil {
		fmt.Printf("    ❌ Error writing %s: %v\n", path, err)
		return
	}
	fmt.Println("    ✅ Sanitized and saved")
}
