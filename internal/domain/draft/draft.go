// Package draft generates personalized outreach copy for qualified
// leads. The opening hook comes from the strongest observed signal and
// the value proposition from the contact's seniority. Delivery is out
// of scope; the pipeline only attaches the draft to the decision.
package draft

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/signal"
)

// Message is a drafted outreach note plus the context that shaped it.
type Message struct {
	Body       string
	SignalType signal.Type
	RoleLevel  lead.Seniority
}

// Drafter produces an outreach message for a lead.
type Drafter interface {
	Draft(l *lead.Lead, signals []signal.Event) Message
}

// Starter is the template-based Drafter implementation.
type Starter struct{}

// NewStarter creates a template drafter.
func NewStarter() *Starter { return &Starter{} }

// Draft assembles a greeting, a signal hook, a role-matched value
// proposition, and a call to action.
func (s *Starter) Draft(l *lead.Lead, signals []signal.Event) Message {
	primary, ok := strongestSignal(signals)

	msg := Message{
		SignalType: "none",
		RoleLevel:  lead.SeniorityUnknown,
	}
	if ok {
		msg.SignalType = primary.Type
	}
	if l != nil && l.Contact != nil {
		msg.RoleLevel = l.Contact.Seniority
	}

	var hook string
	if ok {
		hook = openingHook(primary)
	} else {
		hook = "Saw we're both in the SaaS space."
	}

	firstName := "there"
	if l != nil && l.Contact != nil && l.Contact.Name != "" {
		firstName = strings.Fields(l.Contact.Name)[0]
	}

	msg.Body = fmt.Sprintf("Hi %s,\n\n%s\n\n%s\n\nWorth a quick chat?\n\nBest,",
		firstName, hook, valueProposition(l))
	return msg
}

// strongestSignal picks the highest-strength signal. Ties keep the
// earlier list position so drafts stay deterministic.
func strongestSignal(signals []signal.Event) (signal.Event, bool) {
	if len(signals) == 0 {
		return signal.Event{}, false
	}
	ordered := make([]signal.Event, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Strength > ordered[j].Strength
	})
	return ordered[0], true
}

func openingHook(ev signal.Event) string {
	switch ev.Type {
	case signal.TypeContentEngagement:
		action := ev.Payload.Action()
		if action == "" {
			action = "post"
		}
		return fmt.Sprintf("Saw you %sed our recent post on LinkedIn.", action)
	case signal.TypeProfileVisit:
		return "Thanks for stopping by my profile recently."
	case signal.TypeFundingRound:
		return fmt.Sprintf("Huge congrats on the %s funding round!", roundName(ev.Payload))
	case signal.TypeRoleChange:
		title := "new role"
		if p, ok := ev.Payload.(signal.RoleChangePayload); ok && p.NewTitle != "" {
			title = p.NewTitle
		}
		return fmt.Sprintf("Congrats on the new role as %s!", title)
	case signal.TypeEventAttendance:
		event := "the event"
		if p, ok := ev.Payload.(signal.EventPayload); ok && p.EventName != "" {
			event = p.EventName
		}
		return fmt.Sprintf("Saw you're also attending %s.", event)
	case signal.TypeDemoRequest:
		return "Thanks for requesting a demo with us."
	default:
		return "I've been following your work."
	}
}

// roundName formats a normalized round type for prose, "series_a"
// becoming "Series A".
func roundName(p signal.Payload) string {
	raw := ""
	if fp, ok := p.(signal.FundingPayload); ok {
		raw = fp.RoundType
	} else if p != nil {
		raw = p.Action()
	}
	if raw == "" {
		return "recent"
	}
	words := strings.Split(raw, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func valueProposition(l *lead.Lead) string {
	if l == nil || l.Contact == nil {
		return "We help companies scale their outbound efficiency."
	}
	switch l.Contact.Seniority {
	case lead.SeniorityCLevel, lead.SeniorityVP:
		return "I help leaders automate their GTM motion to cut costs by 40% while doubling pipeline."
	case lead.SeniorityDirector, lead.SeniorityManager:
		return "We built a tool that automates signal collection so your team can focus on closing, not researching."
	default:
		return "Our platform handles the boring data entry parts of prospecting for you."
	}
}
