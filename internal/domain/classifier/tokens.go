package classifier

import (
	"strings"
	"time"

	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/signal"
)

// Feature tokens fed to the classifier. Buckets only; raw values never
// enter the vocabulary.
const (
	TokenPad   = "[PAD]"
	TokenStart = "[START]"
	TokenEnd   = "[END]"

	TokenTenureNew   = "TENURE_NEW"
	TokenTenureShort = "TENURE_SHORT"
	TokenTenureMid   = "TENURE_MID"
	TokenTenureLong  = "TENURE_LONG"

	TokenFundingBootstrap = "FUNDING_BOOTSTRAP"
	TokenFundingSeed      = "FUNDING_SEED"
	TokenFundingSeriesA   = "FUNDING_SERIES_A"
	TokenFundingGrowth    = "FUNDING_GROWTH"

	TokenMomentumDecline = "MOMENTUM_DECLINING"
	TokenMomentumStable  = "MOMENTUM_STABLE"
	TokenMomentumAccel   = "MOMENTUM_ACCELERATING"
)

// momentumWindow is the lookback used to judge signal momentum: activity
// in the most recent month is compared against the trailing three-month
// monthly average.
const momentumWindow = 90 * 24 * time.Hour

// TokenizeLead converts a lead and its signals into the bucketed feature
// tokens the classifier vocabulary understands.
func TokenizeLead(l *lead.Lead, signals []signal.Event, now time.Time) []string {
	tokens := []string{TokenStart}
	tokens = append(tokens, tenureToken(l))
	tokens = append(tokens, fundingToken(l))
	tokens = append(tokens, momentumToken(signals, now))
	for _, ev := range signals {
		tokens = append(tokens, SignalToken(ev.Type))
	}
	tokens = append(tokens, TokenEnd)
	return tokens
}

// SignalToken maps a signal type to its vocabulary token, e.g.
// demo_request becomes SIGNAL_DEMO_REQUEST.
func SignalToken(t signal.Type) string {
	return "SIGNAL_" + strings.ToUpper(string(t))
}

func tenureToken(l *lead.Lead) string {
	months := 0
	if l != nil && l.Contact != nil {
		months = l.Contact.MonthsInRole
	}
	switch {
	case months < 3:
		return TokenTenureNew
	case months < 6:
		return TokenTenureShort
	case months < 18:
		return TokenTenureMid
	default:
		return TokenTenureLong
	}
}

func fundingToken(l *lead.Lead) string {
	stage := ""
	if l != nil && l.Company != nil {
		stage = strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(l.Company.FundingStage, "-", "_"), " ", "_"))
	}
	switch stage {
	case "", "bootstrapped", "bootstrap":
		return TokenFundingBootstrap
	case "pre_seed", "seed":
		return TokenFundingSeed
	case "series_a":
		return TokenFundingSeriesA
	default:
		// series_b and beyond, ipo, public
		return TokenFundingGrowth
	}
}

// momentumToken compares the last month's signal volume against the
// trailing three-month monthly average.
func momentumToken(signals []signal.Event, now time.Time) string {
	const epsilon = 1e-8

	var lastMonth, window float64
	cutoff := now.Add(-momentumWindow)
	monthAgo := now.Add(-30 * 24 * time.Hour)
	for _, ev := range signals {
		if ev.Timestamp.Before(cutoff) || ev.Timestamp.After(now) {
			continue
		}
		window++
		if ev.Timestamp.After(monthAgo) {
			lastMonth++
		}
	}

	surge := lastMonth / (window/3.0 + epsilon)
	switch {
	case surge < 0.8:
		return TokenMomentumDecline
	case surge < 1.2:
		return TokenMomentumStable
	default:
		return TokenMomentumAccel
	}
}
