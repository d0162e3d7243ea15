package card

import "time"

// ActivityDateLayout is the portal's transaction timestamp format,
// e.g. "12/7/2017 12:23:47 PM".
const ActivityDateLayout = "1/2/2006 3:04:05 PM"

// Balance is a snapshot of the active card as shown on the dashboard.
type Balance struct {
	CardNumber string
	CardName   string
	// Balance keeps the server's currency text, e.g. "$30.00".
	Balance       string
	LastUpdatedOn time.Time
}

// Cents parses Balance into hundredths of the currency unit.
func (b *Balance) Cents() (int64, error) {
	return ParseAmount(b.Balance)
}

// ActivityRecord is one row of the card activity table. All fields keep the
// portal's text.
type ActivityRecord struct {
	Date     string
	Agency   string
	Location string
	Type     string
	Amount   string
	Balance  string
}

// Time parses Date in loc.
func (r *ActivityRecord) Time(loc *time.Location) (time.Time, error) {
	return ParseActivityDate(r.Date, loc)
}

func (r *ActivityRecord) AmountCents() (int64, error) {
	return ParseAmount(r.Amount)
}

func (r *ActivityRecord) BalanceCents() (int64, error) {
	return ParseAmount(r.Balance)
}

// ErrorCode is the closed set of login failures the portal reports. The empty
// code means the failure could not be classified.
type ErrorCode string

const (
	ErrorCodeAccountLocked      ErrorCode = "ACCOUNT_LOCKED"
	ErrorCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrorCodeAlreadyLinked      ErrorCode = "ALREADY_LINKED"
	ErrorCodeInvalidCardNumber  ErrorCode = "INVALID_CARD_NUMBER"
)

type LoginResult struct {
	Success   bool
	ErrorCode ErrorCode
}

// Classified reports whether a failed login carries a known ErrorCode.
func (r LoginResult) Classified() bool {
	return !r.Success && r.ErrorCode != ""
}

// CardSwitchResult is returned by SetCurrentCard. CurrentBalance always holds
// the card that is active after the call, which is the previous card when the
// switch did not happen.
type CardSwitchResult struct {
	Success        bool
	CurrentBalance Balance
}
