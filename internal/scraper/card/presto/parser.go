package presto

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/grez-lucas/presto/internal/scraper/card"
)

// lastUpdatedLayouts are tried in order on the dashboard timestamp.
var lastUpdatedLayouts = []string{
	"January 2, 2006",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 3:04:05 PM",
	"Jan 2, 2006",
	card.ActivityDateLayout,
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"2006-01-02",
}

// DashboardState classifies a dashboard page.
type DashboardState int

const (
	// DashboardNotLoggedIn has neither a card summary nor a no-card message.
	DashboardNotLoggedIn DashboardState = iota
	DashboardNoCard
	DashboardHasCard
)

func (s DashboardState) String() string {
	switch s {
	case DashboardNoCard:
		return "no-card"
	case DashboardHasCard:
		return "has-card"
	default:
		return "not-logged-in"
	}
}

// Dashboard holds everything extracted from one dashboard page.
type Dashboard struct {
	State   DashboardState
	Balance card.Balance
	// OtherCards are the dropdown card numbers, deduplicated in page order.
	OtherCards  []string
	SwitchToken string
}

// CardNumbers lists the account's cards: the dropdown cards in reverse page
// order followed by the active card. A no-card page yields an empty list and
// a page without an active card lists only the dropdown.
func (d *Dashboard) CardNumbers() []string {
	if d.State == DashboardNoCard {
		return []string{}
	}

	numbers := make([]string, 0, len(d.OtherCards)+1)
	if d.Balance.CardNumber != "" {
		numbers = append(numbers, d.Balance.CardNumber)
	}
	numbers = append(numbers, d.OtherCards...)
	slices.Reverse(numbers)

	return numbers
}

// --- PUBLIC API ---

func ParseLoginToken(html string) (string, error) {
	doc, err := newDocument([]byte(html))
	if err != nil {
		return "", err
	}
	return ExtractLoginToken(doc), nil
}

// ParseSignedIn reports whether html is an authenticated page. Unparseable
// input is not signed in.
func ParseSignedIn(html string) bool {
	doc, err := newDocument([]byte(html))
	if err != nil {
		return false
	}
	return ExtractSignedIn(doc)
}

func ParseDashboard(html string, loc *time.Location) (*Dashboard, error) {
	doc, err := newDocument([]byte(html))
	if err != nil {
		return nil, err
	}
	dashboard := ExtractDashboard(doc, loc)
	return &dashboard, nil
}

func ParseActivity(html string) ([]card.ActivityRecord, error) {
	doc, err := newDocument([]byte(html))
	if err != nil {
		return nil, err
	}
	return ExtractActivities(doc), nil
}

// --- EXTRACTORS ---

// ExtractLoginToken returns the anti-forgery token of the sign-in form, or ""
// when the form is missing.
func ExtractLoginToken(doc *goquery.Document) string {
	return doc.Find(SelectorSignInToken).First().AttrOr("value", "")
}

func ExtractSignedIn(doc *goquery.Document) bool {
	return doc.Find(SelectorSignOut).Length() > 0
}

func HasCardSummary(doc *goquery.Document) bool {
	return doc.Find(SelectorCardSummary).Length() > 0
}

// HasNoCardMessage is true only when the no-card message is present without a
// card summary. Pages with a card also carry a hidden copy of the message.
func HasNoCardMessage(doc *goquery.Document) bool {
	return doc.Find(SelectorNoCardMessage).Length() > 0 && !HasCardSummary(doc)
}

func ExtractDashboardState(doc *goquery.Document) DashboardState {
	switch {
	case HasNoCardMessage(doc):
		return DashboardNoCard
	case HasCardSummary(doc):
		return DashboardHasCard
	default:
		return DashboardNotLoggedIn
	}
}

func ExtractDashboard(doc *goquery.Document, loc *time.Location) Dashboard {
	return Dashboard{
		State:       ExtractDashboardState(doc),
		Balance:     ExtractBalance(doc, loc),
		OtherCards:  ExtractOtherCardNumbers(doc),
		SwitchToken: ExtractSwitchToken(doc),
	}
}

func ExtractBalance(doc *goquery.Document, loc *time.Location) card.Balance {
	return card.Balance{
		CardNumber:    ExtractCardNumber(doc),
		CardName:      ExtractCardName(doc),
		Balance:       strings.TrimSpace(doc.Find(SelectorBalance).First().Text()),
		LastUpdatedOn: ExtractLastUpdatedOn(doc, loc),
	}
}

func ExtractCardNumber(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find(SelectorCardNumber).First().Text())
}

func ExtractCardName(doc *goquery.Document) string {
	name := strings.TrimSpace(doc.Find(SelectorCardName).First().Text())
	return strings.TrimPrefix(name, CardNamePrefix)
}

// ExtractLastUpdatedOn returns the zero time when the label is missing or the
// date cannot be parsed.
func ExtractLastUpdatedOn(doc *goquery.Document, loc *time.Location) time.Time {
	label := doc.Find(SelectorTooltipLabels).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), LastUpdatedLabel)
	}).First()

	text := strings.TrimSpace(label.Parent().Find("span").First().Text())
	if text == "" {
		return time.Time{}
	}

	t, err := parseLastUpdated(text, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ExtractOtherCardNumbers returns every data-visibleid value once, in page
// order.
func ExtractOtherCardNumbers(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	numbers := []string{}

	doc.Find(SelectorOtherCards).Each(func(_ int, s *goquery.Selection) {
		id := s.AttrOr(AttrVisibleID, "")
		if seen[id] {
			return
		}
		seen[id] = true
		numbers = append(numbers, id)
	})

	return numbers
}

// ExtractSwitchToken returns the token of the form enclosing the first card
// dropdown entry. Each rendered copy of the dropdown has its own token and
// only the first one is accepted.
func ExtractSwitchToken(doc *goquery.Document) string {
	return doc.Find(SelectorOtherCards).First().
		Closest("form").
		Find(SelectorFormToken).First().
		AttrOr("value", "")
}

// ExtractActivities reads the desktop activity table in row order.
func ExtractActivities(doc *goquery.Document) []card.ActivityRecord {
	rows := doc.Find(SelectorActivityRows)
	activities := make([]card.ActivityRecord, 0, rows.Length())

	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})
		cell := func(i int) string {
			if i < len(cells) {
				return cells[i]
			}
			return ""
		}

		activities = append(activities, card.ActivityRecord{
			Date:     cell(colDate),
			Agency:   cell(colAgency),
			Location: cell(colLocation),
			Type:     cell(colType),
			Amount:   cell(colAmount),
			Balance:  cell(colBalance),
		})
	})

	return activities
}

// --- LOW LEVEL UTILITIES ---

func newDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", card.ErrParsingFailed, err)
	}
	return doc, nil
}

func parseLastUpdated(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range lastUpdatedLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: last updated date %q", card.ErrParsingFailed, s)
}
