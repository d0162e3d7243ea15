// Package presto is an unofficial client for the PRESTO fare-card web portal.
//
// A Client holds one cookie session. Log in first, then read the balance,
// list or switch cards and query activity:
//
//	c, err := presto.New(presto.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	res, err := c.Login(ctx, username, password)
//	if err != nil {
//		return err
//	}
//	if !res.Success {
//		return fmt.Errorf("login rejected: %s", res.ErrorCode)
//	}
//	balance, err := c.Balance(ctx)
package presto

import (
	"github.com/grez-lucas/presto/internal/scraper/card"
	"github.com/grez-lucas/presto/internal/scraper/card/presto"
)

type (
	Client  = presto.Client
	Config  = presto.Config
	Paths   = presto.Paths
	Option  = presto.Option
	Portal  = card.Portal
	Balance = card.Balance

	ActivityRecord   = card.ActivityRecord
	LoginResult      = card.LoginResult
	CardSwitchResult = card.CardSwitchResult
	ErrorCode        = card.ErrorCode
	ScraperError     = card.ScraperError
)

const (
	ErrorCodeAccountLocked      = card.ErrorCodeAccountLocked
	ErrorCodeInvalidCredentials = card.ErrorCodeInvalidCredentials
	ErrorCodeAlreadyLinked      = card.ErrorCodeAlreadyLinked
	ErrorCodeInvalidCardNumber  = card.ErrorCodeInvalidCardNumber

	DefaultBaseURL  = presto.DefaultBaseURL
	DefaultPageSize = presto.DefaultPageSize
	DefaultTimeout  = presto.DefaultTimeout
)

var (
	ErrNoCard           = card.ErrNoCard
	ErrNotLoggedIn      = card.ErrNotLoggedIn
	ErrParsingFailed    = card.ErrParsingFailed
	ErrUnexpectedStatus = card.ErrUnexpectedStatus
)

var (
	New           = presto.New
	DefaultConfig = presto.DefaultConfig
	DefaultPaths  = presto.DefaultPaths

	WithTransport = presto.WithTransport
	WithCookieJar = presto.WithCookieJar
	WithClock     = presto.WithClock

	ClassifyError = presto.ClassifyError
)
