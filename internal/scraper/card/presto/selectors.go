package presto

// CSS Selectors for the PRESTO web portal
const (
	// Homepage sign-in form
	SelectorSignInToken = `#signwithaccount input[name="__RequestVerificationToken"]`

	// Header link rendered only for authenticated sessions
	SelectorSignOut = "body .signInSignOut"

	// Dashboard
	SelectorCardSummary   = ".dashboard__card-summary"
	SelectorNoCardMessage = ".dashboard__no-card-message"
	SelectorCardNumber    = "span#cardNumber"
	SelectorCardName      = ".dashboard__card-summary h2"
	SelectorBalance       = "p.dashboard__quantity"
	SelectorTooltipLabels = ".dashboard__card-summary ul.commontooltip strong"

	// Card dropdown. The same dropdown is rendered once per layout variant,
	// each inside its own form with its own token.
	SelectorOtherCards = "[data-visibleid]"
	SelectorFormToken  = `input[name="__RequestVerificationToken"]`

	// Activity page. The mobile summary table shares the container but has no id.
	SelectorActivityRows = "#paginator-content table#tblTHR tbody tr"
)

// Text markers
const (
	CardNamePrefix     = "Balance on "
	LastUpdatedLabel   = "Last Updated on:"
	AttrVisibleID      = "data-visibleid"
	TokenField         = "__RequestVerificationToken"
	SwitchCardField    = "setFareMediaSession"
	RegisteredLoginMsg = "Your PRESTO card is already registered to an account.  Please log in using your username and password."
)

// Activity table column positions. Columns 4 and 5 (service class, discount)
// are not extracted.
const (
	colDate     = 0
	colAgency   = 1
	colLocation = 2
	colType     = 3
	colAmount   = 6
	colBalance  = 7
)
