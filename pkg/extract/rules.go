package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-voiceform/pkg/canonical"
)

// RuleName identifies an extraction rule.
type RuleName string

const (
	RuleFullName RuleName = "name"
	RuleEmail    RuleName = "email"
	RulePhone    RuleName = "phone"
	RuleSSN      RuleName = "ssn"
	RuleDate     RuleName = "date"
	RuleAddress  RuleName = "address"
	RuleGender   RuleName = "gender"
	RuleMarital  RuleName = "marital"
	RuleBirthday RuleName = "birthday"
)

// MatchFunc inspects a sanitized utterance and returns the raw value when the
// rule fires.
type MatchFunc func(text string) (string, bool)

// Rule is one entry of the ordered extraction list.
type Rule struct {
	Name     RuleName
	Target   string
	Excludes []RuleName
	Match    MatchFunc
}

var (
	nameRe    = regexp.MustCompile(`(?i)\b(?:my name is|i am|i'm)\s+([a-z][a-z' -]*?)(?:\s+(?:and|my)\b|[.,!?;]|$)`)
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe   = regexp.MustCompile(`(?:\(\d{3}\)\s?|\b\d{3}[-.\s]?)\d{3}[-.\s]?\d{4}\b`)
	ssnRe     = regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`)
	dateRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	birthRe   = regexp.MustCompile(`(?i)\b(?:birth|born)`)
	addressRe = regexp.MustCompile(`(?i)\b(email\s+)?(?:address(?:\s+is)?|live at|located at)\s*:?\s+([^.!?;]+?)(?:\s+(?:and\s+)?my\b|[.!?;]|$)`)
	maritalRe = regexp.MustCompile(`(?i)\b(single|married|divorced|widowed)\b`)
)

// nameStopwords are words that follow "I am" without being a name.
var nameStopwords = map[string]struct{}{
	"single": {}, "married": {}, "divorced": {}, "widowed": {},
	"male": {}, "female": {}, "a": {}, "an": {}, "the": {},
	"not": {}, "retired": {}, "employed": {}, "unemployed": {},
}

// DefaultRules returns the standard rule list in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleFullName, Target: "fullName", Match: matchName},
		{Name: RuleEmail, Target: "emailAddress", Match: matchRegexp(emailRe)},
		{Name: RulePhone, Target: "phoneNumber", Match: matchRegexp(phoneRe)},
		{Name: RuleSSN, Target: "ssn", Excludes: []RuleName{RulePhone}, Match: matchRegexp(ssnRe)},
		{Name: RuleBirthday, Target: "dateOfBirth", Match: matchDate(true)},
		{Name: RuleDate, Target: "dateOfBirth", Excludes: []RuleName{RuleBirthday}, Match: matchDate(false)},
		{Name: RuleAddress, Target: "currentAddress", Match: matchAddress},
		{Name: RuleGender, Target: "gender", Match: matchGender},
		{Name: RuleMarital, Target: "maritalStatus", Match: matchMarital},
	}
}

func matchRegexp(re *regexp.Regexp) MatchFunc {
	return func(text string) (string, bool) {
		m := re.FindString(text)
		return m, m != ""
	}
}

func matchName(text string) (string, bool) {
	for _, m := range nameRe.FindAllStringSubmatch(text, -1) {
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		first := strings.ToLower(strings.Fields(value)[0])
		if _, stop := nameStopwords[first]; stop {
			continue
		}
		return value, true
	}
	return "", false
}

// matchDate finds an M/D/YYYY date and returns it in ISO order. With birth
// set the rule only fires when the utterance mentions birth; otherwise it
// fires on any date.
func matchDate(birth bool) MatchFunc {
	return func(text string) (string, bool) {
		if birth && !birthRe.MatchString(text) {
			return "", false
		}
		m := dateRe.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return canonical.SlashToISO(m[1], m[2], m[3]), true
	}
}

// matchAddress captures up to sentence punctuation or a following "and my"
// clause. Commas stay so "City, State" survives.
func matchAddress(text string) (string, bool) {
	for _, m := range addressRe.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			continue
		}
		value := strings.TrimRight(strings.TrimSpace(m[2]), ",")
		if value != "" {
			return value, true
		}
	}
	return "", false
}

// matchGender applies the substring checks in order; "female" is evaluated
// last and wins when both words occur.
func matchGender(text string) (string, bool) {
	lower := strings.ToLower(text)
	value := ""
	if strings.Contains(lower, "male") && !strings.Contains(lower, "female") {
		value = "Male"
	}
	if strings.Contains(lower, "female") {
		value = "Female"
	}
	return value, value != ""
}

func matchMarital(text string) (string, bool) {
	m := maritalRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return cases.Title(language.English).String(strings.ToLower(m[1])), true
}
