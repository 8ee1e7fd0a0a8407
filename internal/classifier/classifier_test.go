package classifier

import (
	"testing"

	"github.com/hpungsan/jetstorage/internal/config"
)

func TestClassify(t *testing.T) {
	on := config.DefaultStorage()

	tests := []struct {
		name    string
		field   Field
		want    Reason
		keyword string
	}{
		{"plain text input", Field{Tag: "INPUT", Type: "text", Name: "fullname"}, ReasonEligible, ""},
		{"textarea", Field{Tag: "TEXTAREA", Name: "bio"}, ReasonEligible, ""},
		{"lowercase tag", Field{Tag: "input", Type: "email", ID: "email"}, ReasonEligible, ""},
		{"select", Field{Tag: "SELECT", Name: "country"}, ReasonUnsupported, ""},
		{"div", Field{Tag: "DIV"}, ReasonUnsupported, ""},
		{"password type", Field{Tag: "INPUT", Type: "password", Name: "login"}, ReasonPassword, ""},
		{"password type uppercase", Field{Tag: "INPUT", Type: "PASSWORD"}, ReasonPassword, ""},
		{"card in id", Field{Tag: "INPUT", ID: "credit-card-number"}, ReasonKeyword, "card"},
		{"cvv in name", Field{Tag: "INPUT", Name: "CVV"}, ReasonKeyword, "cvv"},
		{"token in class", Field{Tag: "INPUT", Class: "form-control api-Token"}, ReasonKeyword, "token"},
		{"ssn in placeholder", Field{Tag: "INPUT", Placeholder: "Your SSN"}, ReasonKeyword, "ssn"},
		{"secret in textarea", Field{Tag: "TEXTAREA", Name: "client_secret"}, ReasonKeyword, "secret"},
		{"keyword spanning attributes", Field{Tag: "INPUT", Name: "k", ID: "ey"}, ReasonKeyword, "key"},
		{"monkey contains key", Field{Tag: "INPUT", Name: "monkey"}, ReasonKeyword, "key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.field, on)
			if got.Reason != tt.want {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.want)
			}
			if got.Keyword != tt.keyword {
				t.Errorf("Keyword = %q, want %q", got.Keyword, tt.keyword)
			}
			if got.Eligible != (tt.want == ReasonEligible) {
				t.Errorf("Eligible = %v for reason %q", got.Eligible, got.Reason)
			}
		})
	}
}

func TestIsEligible_PasswordAlwaysRejected(t *testing.T) {
	fields := []Field{
		{Tag: "INPUT", Type: "password"},
		{Tag: "INPUT", Type: "password", Name: "nickname", ID: "nick", Placeholder: "Nickname", Class: "plain"},
		{Tag: "TEXTAREA", Type: "password"},
	}
	for _, settings := range []config.Storage{config.DefaultStorage(), {}} {
		for _, f := range fields {
			if IsEligible(f, settings) {
				t.Errorf("IsEligible(%+v, %+v) = true, want false", f, settings)
			}
		}
	}
}

func TestIsEligible_EveryKeywordRejected(t *testing.T) {
	for _, k := range Keywords {
		for _, f := range []Field{
			{Tag: "INPUT", Name: "x" + k},
			{Tag: "INPUT", ID: k + "_field"},
			{Tag: "INPUT", Placeholder: "Enter " + k},
			{Tag: "TEXTAREA", Class: "a " + k + " b"},
		} {
			if IsEligible(f, config.DefaultStorage()) {
				t.Errorf("IsEligible(%+v) = true, want false", f)
			}
		}
	}
}

func TestIsEligible_ExcludeSecretsOff(t *testing.T) {
	off := config.Storage{ExcludeSecrets: false}

	if !IsEligible(Field{Tag: "INPUT", ID: "credit-card-number"}, off) {
		t.Error("keyword heuristic should be inactive when ExcludeSecrets is off")
	}
	if IsEligible(Field{Tag: "INPUT", Type: "password"}, off) {
		t.Error("password inputs stay excluded when ExcludeSecrets is off")
	}
}
