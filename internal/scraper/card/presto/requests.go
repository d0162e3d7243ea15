package presto

import (
	_ "embed"
	"encoding/json"
	"net/url"
	"strconv"
)

// paginationModel is echoed verbatim as currentModel in every activity query.
//
//go:embed data/pagination_model.json
var paginationModel []byte

// PaginationModel returns a copy of the embedded activity pagination payload.
func PaginationModel() json.RawMessage {
	return append(json.RawMessage(nil), paginationModel...)
}

type CustSecurity struct {
	Login    string `json:"Login"`
	Password string `json:"Password"`
}

// LoginBody is the JSON payload of the username/password sign-in.
type LoginBody struct {
	AnonymousOrderACard bool         `json:"anonymousOrderACard"`
	CustSecurity        CustSecurity `json:"custSecurity"`
}

// CardLoginBody is the JSON payload of the card-number sign-in.
type CardLoginBody struct {
	AnonymousOrderACard  bool   `json:"anonymousOrderACard"`
	FareMediaID          string `json:"fareMediaId"`
	RegisteredLoginError string `json:"registeredLoginError"`
}

// ActivityBody is the JSON payload of the activity paginator. SelectedMonth
// holds either a month offset or a date range.
type ActivityBody struct {
	TransactionType string          `json:"TransactionType"`
	Agency          string          `json:"Agency"`
	PageSize        string          `json:"PageSize"`
	CurrentModel    json.RawMessage `json:"currentModel"`
	SelectedMonth   string          `json:"selectedMonth"`
}

// NewLoginBody does not validate its inputs, the portal is authoritative.
func NewLoginBody(username, password string) LoginBody {
	return LoginBody{
		AnonymousOrderACard: false,
		CustSecurity: CustSecurity{
			Login:    username,
			Password: password,
		},
	}
}

func NewCardLoginBody(cardNumber string) CardLoginBody {
	return CardLoginBody{
		AnonymousOrderACard:  true,
		FareMediaID:          cardNumber,
		RegisteredLoginError: RegisteredLoginMsg,
	}
}

func NewActivityBody(pageSize int, selectedMonth string) ActivityBody {
	return ActivityBody{
		TransactionType: "0",
		Agency:          "-1",
		PageSize:        strconv.Itoa(pageSize),
		CurrentModel:    PaginationModel(),
		SelectedMonth:   selectedMonth,
	}
}

// NewSwitchCardForm encodes the card switch form. Field order is kept as the
// portal's own form submits it.
func NewSwitchCardForm(cardNumber, token string) string {
	return SwitchCardField + "=" + url.QueryEscape(cardNumber) +
		"&" + TokenField + "=" + url.QueryEscape(token)
}
