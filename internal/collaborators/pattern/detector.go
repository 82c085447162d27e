// Package pattern provides a reference implementation of the
// regex-based sensitive-pattern detector collaborator. The real
// production detector is external to the Argumentation Core; this is
// the adapter Arbiter wires in when run standalone.
package pattern

import (
	"context"
	"regexp"

	"github.com/arbiter-ai/arbiter/internal/domain"
)

var (
	ssnRE   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	ccRE    = regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`)
	emailRE = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[a-zA-Z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?1[-. ]?)?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`)
	ipv4RE  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// Detector counts sensitive-pattern matches in text. It never fails for
// in-memory input.
type Detector struct{}

// New returns a regex-based Detector.
func New() *Detector {
	return &Detector{}
}

// Scan implements domain.PatternDetector.
func (d *Detector) Scan(ctx context.Context, text string) (domain.Counters, error) {
	return domain.Counters{
		SSN:        len(ssnRE.FindAllString(text, -1)),
		CreditCard: len(ccRE.FindAllString(text, -1)),
		Email:      len(emailRE.FindAllString(text, -1)),
		Phone:      len(phoneRE.FindAllString(text, -1)),
		IPAddress:  len(ipv4RE.FindAllString(text, -1)),
	}, nil
}
