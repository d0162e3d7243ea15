package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

const defaultStableWait = time.Second

// SelectorReport is the number of elements one selector matched.
type SelectorReport struct {
	Selector string
	Count    int
}

func (r SelectorReport) Found() bool {
	return r.Count > 0
}

// ProbeSelectors counts the matches of each selector on the current page
// without waiting for any of them to appear.
func ProbeSelectors(page *rod.Page, selectors []string) ([]SelectorReport, error) {
	if err := page.WaitDOMStable(defaultStableWait, 0); err != nil {
		return nil, fmt.Errorf("wait for dom: %w", err)
	}

	reports := make([]SelectorReport, 0, len(selectors))
	for _, selector := range selectors {
		elements, err := page.Elements(selector)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", selector, err)
		}
		reports = append(reports, SelectorReport{Selector: selector, Count: len(elements)})
	}

	return reports, nil
}
