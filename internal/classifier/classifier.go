// Package classifier decides whether a form field may be captured or offered suggestions.
package classifier

import (
	"strings"

	"github.com/hpungsan/jetstorage/internal/config"
)

// Keywords mark a field as sensitive when found in its identifying attributes.
var Keywords = []string{"password", "cvv", "card", "key", "secret", "token", "ssn", "cvc"}

// Field is the attribute snapshot of a focusable element.
type Field struct {
	Tag         string `json:"tag"`
	Type        string `json:"type,omitempty"`
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Class       string `json:"class,omitempty"`
}

// Reason explains a verdict.
type Reason string

const (
	ReasonEligible    Reason = "eligible"
	ReasonUnsupported Reason = "unsupported_element"
	ReasonPassword    Reason = "password_type"
	ReasonKeyword     Reason = "sensitive_keyword"
)

// Verdict is the outcome of Classify.
type Verdict struct {
	Eligible bool   `json:"eligible"`
	Reason   Reason `json:"reason"`
	Keyword  string `json:"keyword,omitempty"`
}

// IsEligible reports whether f may be captured and offered suggestions.
func IsEligible(f Field, settings config.Storage) bool {
	return Classify(f, settings).Eligible
}

// Classify evaluates f. Only INPUT and TEXTAREA are ever eligible, password
// inputs never are, and with ExcludeSecrets on any keyword in the
// concatenated name, id, placeholder and class rejects the field.
//
// Results must not be cached: pages can rewrite attributes between focuses.
func Classify(f Field, settings config.Storage) Verdict {
	switch strings.ToUpper(f.Tag) {
	case "INPUT", "TEXTAREA":
	default:
		return Verdict{Reason: ReasonUnsupported}
	}

	if strings.EqualFold(f.Type, "password") {
		return Verdict{Reason: ReasonPassword}
	}

	if settings.ExcludeSecrets {
		attrs := strings.ToLower(f.Name + f.ID + f.Placeholder + f.Class)
		for _, k := range Keywords {
			if strings.Contains(attrs, k) {
				return Verdict{Reason: ReasonKeyword, Keyword: k}
			}
		}
	}

	return Verdict{Eligible: true, Reason: ReasonEligible}
}
