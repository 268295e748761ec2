package portal

import (
	"regexp"
	"strings"
)

// Fields holds the labeled scalar values pulled from a detail page's text.
// Every field is independently optional; an unmatched pattern leaves the
// field empty.
type Fields struct {
	Name        string
	JobNumber   string
	Mobile      string
	Email       string
	SiteAddress string
	Suburb      string
}

var (
	nameRe   = regexp.MustCompile(`Name:\s*([^\n]+)`)
	jobRe    = regexp.MustCompile(`Job Number:\s*(\w+\d+)`)
	mobileRe = regexp.MustCompile(`Mobile:\s*([\d\s]+)`)
	emailRe  = regexp.MustCompile(`Email:\s*([\w.-]+@[\w.-]+\.\w+)`)
	// The site address may wrap onto a second line in the portal markup.
	addressRe = regexp.MustCompile(`Site Address:\s*([^\n]+(?:\n[^\n]+)?)`)
	// Suburb is second-order: parsed back out of the extracted address,
	// which the portal renders as "STREET SUBURB, STATE, POSTCODE".
	suburbRe = regexp.MustCompile(`([A-Z\s]+),\s*[A-Z]+,\s*\d+`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// ExtractFields pulls the fixed set of labeled fields out of raw page text.
// It never fails: a field whose pattern does not match is returned empty.
// The job number must carry its alphanumeric code shape; a bare "Job Number:"
// label without one yields absence.
func ExtractFields(text string) Fields {
	f := Fields{
		Name:      firstGroup(nameRe, text),
		JobNumber: firstGroup(jobRe, text),
		Mobile:    firstGroup(mobileRe, text),
		Email:     firstGroup(emailRe, text),
	}
	if addr := firstGroup(addressRe, text); addr != "" {
		f.SiteAddress = squashSpace(addr)
		f.Suburb = firstGroup(suburbRe, f.SiteAddress)
	}
	return f
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// squashSpace collapses runs of whitespace into single spaces.
func squashSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
