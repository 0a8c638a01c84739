// Package enrich turns raw prospect identifiers into fully populated
// leads. In production the enricher fronts providers like Clearbit,
// Apollo, or Sales Navigator; the in-memory implementation here works
// from caller-supplied attributes and LinkedIn URL parsing alone.
package enrich

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/scout/internal/domain/lead"
)

// Request carries the identifiers and any already-known attributes for
// one prospect. URLs drive ID extraction; the attribute blocks override
// or supplement what a provider would return.
type Request struct {
	SubjectID  string
	ProfileURL string
	CompanyURL string
	Contact    ContactAttrs
	Company    CompanyAttrs
	Social     *SocialAttrs
}

// ContactAttrs supplements contact enrichment.
type ContactAttrs struct {
	Name         string
	Email        string
	Phone        string
	Title        string
	MonthsInRole int
}

// CompanyAttrs supplements company enrichment.
type CompanyAttrs struct {
	Name            string
	Size            int
	Industry        string
	TechStack       []string
	RevenueEstimate float64
	FundingStage    string
	Website         string
	Headquarters    string
}

// SocialAttrs supplements social graph analysis.
type SocialAttrs struct {
	MutualConnectionNames []string
	SharedGroups          []string
	SecondDegreeCount     int
}

// Enricher builds an enriched lead for a prospect. Implementations may
// call external providers and must honor ctx.
type Enricher interface {
	EnrichLead(ctx context.Context, req Request) (*lead.Lead, error)
}

var (
	companySlugRe = regexp.MustCompile(`/company/([^/?]+)`)
	profileSlugRe = regexp.MustCompile(`/in/([^/?]+)`)
)

// InMemory implements Enricher without external calls.
type InMemory struct{}

// NewInMemory creates an in-memory enricher.
func NewInMemory() *InMemory { return &InMemory{} }

// EnrichLead combines contact, company, and social graph enrichment.
// At least one of the profile and company URLs must be present.
func (e *InMemory) EnrichLead(_ context.Context, req Request) (*lead.Lead, error) {
	if req.ProfileURL == "" && req.CompanyURL == "" {
		return nil, fmt.Errorf("enrich lead %q: %w", req.SubjectID, ErrMissingProfileURL)
	}

	l := &lead.Lead{SubjectID: req.SubjectID}

	if req.ProfileURL != "" {
		l.Contact = enrichContact(req.ProfileURL, req.Contact)
		if l.SubjectID == "" {
			l.SubjectID = l.Contact.SubjectID
		}
	}
	if req.CompanyURL != "" {
		l.Company = enrichCompany(req.CompanyURL, req.Company)
		if l.Contact != nil && l.Contact.CompanyID == "" {
			l.Contact.CompanyID = l.Company.CompanyID
		}
	}
	if req.Social != nil {
		l.SocialGraph = &lead.SocialGraph{
			SubjectID:             l.SubjectID,
			MutualConnections:     len(req.Social.MutualConnectionNames),
			MutualConnectionNames: req.Social.MutualConnectionNames,
			SharedGroups:          req.Social.SharedGroups,
			SecondDegreeCount:     req.Social.SecondDegreeCount,
		}
	}
	return l, nil
}

func enrichContact(profileURL string, attrs ContactAttrs) *lead.Contact {
	seniority := lead.SeniorityUnknown
	if attrs.Title != "" {
		seniority = lead.DetectSeniority(attrs.Title)
	}
	return &lead.Contact{
		SubjectID:    ExtractSubjectID(profileURL),
		Name:         attrs.Name,
		Email:        attrs.Email,
		Phone:        attrs.Phone,
		Title:        attrs.Title,
		Seniority:    seniority,
		MonthsInRole: attrs.MonthsInRole,
		LinkedInURL:  profileURL,
	}
}

func enrichCompany(companyURL string, attrs CompanyAttrs) *lead.Company {
	industry := lead.IndustryOther
	if attrs.Industry != "" {
		industry = lead.DetectIndustry(attrs.Industry)
	}
	name := attrs.Name
	if name == "" {
		name = nameFromURL(companyURL)
	}
	return &lead.Company{
		CompanyID:       ExtractCompanyID(companyURL),
		Name:            name,
		Size:            attrs.Size,
		Industry:        industry,
		TechStack:       attrs.TechStack,
		RevenueEstimate: attrs.RevenueEstimate,
		FundingStage:    attrs.FundingStage,
		LinkedInURL:     companyURL,
		Website:         attrs.Website,
		Headquarters:    attrs.Headquarters,
	}
}

// ExtractCompanyID derives a stable company identifier from a LinkedIn
// company page URL, e.g. .../company/acme-corp yields "company:acme-corp".
func ExtractCompanyID(url string) string {
	if m := companySlugRe.FindStringSubmatch(url); m != nil {
		return "company:" + m[1]
	}
	parts := strings.Split(url, "/")
	return "company:" + parts[len(parts)-1]
}

// ExtractSubjectID derives a stable person identifier from a LinkedIn
// profile URL, e.g. .../in/john-doe yields "urn:li:person:john-doe".
func ExtractSubjectID(url string) string {
	if m := profileSlugRe.FindStringSubmatch(url); m != nil {
		return "urn:li:person:" + m[1]
	}
	parts := strings.Split(url, "/")
	return "urn:li:person:" + parts[len(parts)-1]
}

// nameFromURL turns a company slug into a readable name,
// "acme-corp" becoming "Acme Corp".
func nameFromURL(url string) string {
	m := companySlugRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	words := strings.Split(m[1], "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
