// Package browser drives a stealth Chrome with Rod for fixture capture and
// selector probing against the live portal.
package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

type LaunchOptions struct {
	// Bin is the Chrome binary. Empty lets Rod find or download one.
	Bin      string
	Headless bool
}

// Launch starts Chrome without the automation flags that portals use to
// spot bots, and connects to it.
func Launch(opts LaunchOptions) (*rod.Browser, error) {
	l := launcher.New().
		Headless(opts.Headless).
		// Disable the "Automation" internal flags
		Set("disable-blink-features", "AutomationControlled").
		Set("exclude-switches", "enable-automation").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("window-size", "1920,1080").
		Devtools(false)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	return browser, nil
}

// NewPage opens a stealth page. When hijack is set every request of the page
// goes through it, e.g. a HAR replayer middleware.
func NewPage(browser *rod.Browser, hijack func(*rod.Hijack)) (*rod.Page, error) {
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("open stealth page: %w", err)
	}

	if hijack != nil {
		router := page.HijackRequests()
		if err := router.Add("*", "", hijack); err != nil {
			return nil, fmt.Errorf("add hijack route: %w", err)
		}
		go router.Run()
	}

	return page, nil
}
