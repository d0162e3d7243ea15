package browser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
)

// Capture is what SavePage wrote for one page.
type Capture struct {
	URL        string
	HTMLPath   string
	Screenshot string
}

// SavePage waits for the DOM to settle, then writes <name>.png and
// <name>.html into dir. The screenshot is optional and a failure to take it
// leaves Screenshot empty.
func SavePage(page *rod.Page, dir, name string) (Capture, error) {
	if err := page.WaitDOMStable(defaultStableWait, 0); err != nil {
		return Capture{}, fmt.Errorf("wait for dom: %w", err)
	}

	var c Capture
	if buf, err := page.Screenshot(false, nil); err == nil {
		path := filepath.Join(dir, name+".png")
		if err := os.WriteFile(path, buf, 0o644); err == nil {
			c.Screenshot = path
		}
	}

	html, err := page.HTML()
	if err != nil {
		return Capture{}, fmt.Errorf("read html: %w", err)
	}

	c.HTMLPath = filepath.Join(dir, name+".html")
	if err := os.WriteFile(c.HTMLPath, []byte(html), 0o644); err != nil {
		return Capture{}, fmt.Errorf("write %s: %w", c.HTMLPath, err)
	}

	info, err := page.Info()
	if err == nil {
		c.URL = info.URL
	}

	return c, nil
}
