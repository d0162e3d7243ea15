package browser

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
)

// TypeHuman types text into an element with human-like timing.
// Element.Type triggers real keydown/keyup events, which the portal's
// sign-in form listens to.
func TypeHuman(el *rod.Element, text string) error {
	for _, char := range text {
		if err := el.Type(input.Key(char)); err != nil {
			return err
		}
		time.Sleep(time.Duration(50+rand.Intn(100)) * time.Millisecond)
	}
	return nil
}

// TypeFast types text without delays.
func TypeFast(el *rod.Element, text string) error {
	keys := make([]input.Key, 0, len(text))
	for _, char := range text {
		keys = append(keys, input.Key(char))
	}
	return el.Type(keys...)
}

// FillField focuses the first element matching selector and types text.
func FillField(page *rod.Page, selector, text string, human bool) error {
	el, err := page.Timeout(10 * time.Second).Element(selector)
	if err != nil {
		return fmt.Errorf("field %q not found: %w", selector, err)
	}
	el = el.CancelTimeout()

	if err := el.Focus(); err != nil {
		return fmt.Errorf("focus %q: %w", selector, err)
	}

	if human {
		return TypeHuman(el, text)
	}
	return TypeFast(el, text)
}
