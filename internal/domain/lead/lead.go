// Package lead contains the enriched prospect model consumed by the scoring
// pipeline: firmographic company data, contact authority data, and the
// social graph summary.
package lead

import "strings"

// Industry is a closed set of verticals. Free text that matches no keyword
// parses to IndustryOther rather than failing.
type Industry string

// Industry verticals.
const (
	IndustrySaaS       Industry = "saas"
	IndustryFintech    Industry = "fintech"
	IndustryHealthtech Industry = "healthtech"
	IndustryEcommerce  Industry = "ecommerce"
	IndustryMartech    Industry = "martech"
	IndustryDevtools   Industry = "devtools"
	IndustrySecurity   Industry = "security"
	IndustryAIML       Industry = "ai_ml"
	IndustryEnterprise Industry = "enterprise"
	IndustryOther      Industry = "other"
)

// Seniority is the contact's authority level.
type Seniority string

// Seniority levels.
const (
	SeniorityCLevel   Seniority = "c_level"
	SeniorityVP       Seniority = "vp"
	SeniorityDirector Seniority = "director"
	SeniorityManager  Seniority = "manager"
	SeniorityIC       Seniority = "individual_contributor"
	SeniorityUnknown  Seniority = "unknown"
)

// Company holds enriched firmographic attributes.
type Company struct {
	CompanyID       string
	Name            string
	Size            int
	Industry        Industry
	TechStack       []string
	RevenueEstimate float64
	FundingStage    string
	LinkedInURL     string
	Website         string
	Headquarters    string
}

// Contact holds enriched prospect attributes.
type Contact struct {
	SubjectID    string
	Name         string
	Email        string
	Phone        string
	Title        string
	Seniority    Seniority
	MonthsInRole int
	LinkedInURL  string
	CompanyID    string
}

// SocialGraph summarizes the sender's network overlap with the prospect.
type SocialGraph struct {
	SubjectID             string
	MutualConnections     int
	MutualConnectionNames []string
	SharedGroups          []string
	SecondDegreeCount     int
}

// Lead aggregates contact, company, and social graph data for one prospect.
// The ICP matcher attaches ICPScore and ICPBreakdown; everything else is
// read-only once enrichment returns.
type Lead struct {
	SubjectID    string
	Contact      *Contact
	Company      *Company
	SocialGraph  *SocialGraph
	ICPScore     float64
	ICPBreakdown map[string]float64
}

// Snapshot returns a copy whose score fields can be written without
// touching the original. Contact, Company, and SocialGraph stay shared;
// scoring treats them as read-only.
func (l *Lead) Snapshot() *Lead {
	cp := *l
	return &cp
}

// industryKeywords drives free-text industry detection. Order within a slice
// does not matter; lookup walks the table and takes the first vertical with
// a matching keyword.
var industryKeywords = map[Industry][]string{
	IndustrySaaS:       {"saas", "software as a service", "cloud software", "subscription software"},
	IndustryFintech:    {"fintech", "financial technology", "payments", "banking", "insurance tech"},
	IndustryHealthtech: {"healthtech", "health tech", "medical", "healthcare", "biotech"},
	IndustryEcommerce:  {"ecommerce", "e-commerce", "retail", "marketplace", "shopping"},
	IndustryMartech:    {"martech", "marketing technology", "advertising", "adtech"},
	IndustryDevtools:   {"devtools", "developer tools", "developer platform", "api"},
	IndustrySecurity:   {"security", "cybersecurity", "infosec", "identity"},
	IndustryAIML:       {"ai", "artificial intelligence", "machine learning", "ml", "data science"},
	IndustryEnterprise: {"enterprise", "b2b", "business software"},
}

// detectionOrder keeps industry keyword matching deterministic across runs.
var detectionOrder = []Industry{
	IndustrySaaS, IndustryFintech, IndustryHealthtech, IndustryEcommerce,
	IndustryMartech, IndustryDevtools, IndustrySecurity, IndustryAIML,
	IndustryEnterprise,
}

// DetectIndustry maps a free-text industry description to a vertical,
// falling back to IndustryOther.
func DetectIndustry(description string) Industry {
	d := strings.ToLower(description)
	if d == "" {
		return IndustryOther
	}
	for _, ind := range detectionOrder {
		if ind == IndustryAIML {
			// "ai" and "ml" are too short for substring matching; require
			// word boundaries for those two.
			for _, kw := range industryKeywords[ind] {
				if kw == "ai" || kw == "ml" {
					if containsWord(d, kw) {
						return ind
					}
					continue
				}
				if strings.Contains(d, kw) {
					return ind
				}
			}
			continue
		}
		for _, kw := range industryKeywords[ind] {
			if strings.Contains(d, kw) {
				return ind
			}
		}
	}
	return IndustryOther
}

func containsWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '/' || r == ',' || r == '-' || r == '&'
	}) {
		if f == word {
			return true
		}
	}
	return false
}

// DetectSeniority infers an authority level from a free-text job title.
// Director is checked before the chief/founder keywords so that titles like
// "Co-Founder & Director" land on DIRECTOR rather than C_LEVEL.
func DetectSeniority(title string) Seniority {
	t := strings.ToLower(title)
	if t == "" {
		return SeniorityUnknown
	}
	if strings.Contains(t, "director") {
		return SeniorityDirector
	}
	for _, kw := range []string{"ceo", "cto", "cfo", "coo", "chief", "founder", "co-founder"} {
		if strings.Contains(t, kw) {
			return SeniorityCLevel
		}
	}
	for _, kw := range []string{"vp", "vice president"} {
		if strings.Contains(t, kw) {
			return SeniorityVP
		}
	}
	for _, kw := range []string{"manager", "lead", "head"} {
		if strings.Contains(t, kw) {
			return SeniorityManager
		}
	}
	return SeniorityIC
}

// ParseSeniority converts an explicit seniority string to the enum,
// defaulting to SeniorityUnknown.
func ParseSeniority(s string) Seniority {
	switch Seniority(strings.ToLower(strings.TrimSpace(s))) {
	case SeniorityCLevel, SeniorityVP, SeniorityDirector, SeniorityManager, SeniorityIC:
		return Seniority(strings.ToLower(strings.TrimSpace(s)))
	default:
		return SeniorityUnknown
	}
}
