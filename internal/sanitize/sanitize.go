package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policy strips all markup from user-submitted free text. It runs once
// at write time; stored text is rendered as-is.
type Policy struct {
	p *bluemonday.Policy
}

func New() *Policy {
	return &Policy{p: bluemonday.StrictPolicy()}
}

func (s *Policy) Clean(text string) string {
	return strings.TrimSpace(s.p.Sanitize(text))
}
