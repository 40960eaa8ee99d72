package extract

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Candidate is a (target field, raw value) pair found in free text. It is
// never stored directly: callers resolve and canonicalize it first.
type Candidate struct {
	Rule          RuleName `json:"rule"`
	TargetFieldID string   `json:"targetFieldId"`
	RawValue      string   `json:"rawValue"`
}

// ToolCall is the typed form of a structured payload.
type ToolCall struct {
	FieldHint string `json:"fieldHint"`
	Value     string `json:"value"`
}

// DefaultFieldKeys are the accepted field reference keys, first present wins.
var DefaultFieldKeys = []string{"fieldId", "field_id", "fieldName", "name", "id"}

// DefaultValueKeys are the accepted value keys, first present wins.
var DefaultValueKeys = []string{"value", "text", "answer", "response"}

var (
	stripPolicy     *bluemonday.Policy
	stripPolicyOnce sync.Once
)

func markupPolicy() *bluemonday.Policy {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy
}

// Extractor runs the rule list over utterances and decodes tool payloads.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	rules     []Rule
	fieldKeys []string
	valueKeys []string
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithRules replaces the rule list.
func WithRules(rules []Rule) Option {
	return func(e *Extractor) {
		e.rules = append([]Rule(nil), rules...)
	}
}

// WithTargets retargets rules by name, leaving unnamed rules untouched.
// Rules retargeted to an empty id are dropped.
func WithTargets(targets map[RuleName]string) Option {
	return func(e *Extractor) {
		kept := e.rules[:0]
		for _, rule := range e.rules {
			if target, ok := targets[rule.Name]; ok {
				rule.Target = target
			}
			if rule.Target != "" {
				kept = append(kept, rule)
			}
		}
		e.rules = kept
	}
}

// WithPayloadKeys replaces the ordered key aliases used by Payload.
func WithPayloadKeys(fieldKeys, valueKeys []string) Option {
	return func(e *Extractor) {
		if len(fieldKeys) > 0 {
			e.fieldKeys = append([]string(nil), fieldKeys...)
		}
		if len(valueKeys) > 0 {
			e.valueKeys = append([]string(nil), valueKeys...)
		}
	}
}

// New returns an Extractor using DefaultRules unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		rules:     DefaultRules(),
		fieldKeys: DefaultFieldKeys,
		valueKeys: DefaultValueKeys,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Rules returns a copy of the active rule list.
func (e *Extractor) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Utterance scans text with every rule in order and returns the candidates
// produced, in rule order.
func (e *Extractor) Utterance(text string) []Candidate {
	clean := Sanitize(text)
	if clean == "" {
		return nil
	}

	fired := make(map[RuleName]bool, len(e.rules))
	var out []Candidate
	for _, rule := range e.rules {
		if rule.Match == nil || excluded(rule, fired) {
			continue
		}
		value, ok := rule.Match(clean)
		if !ok {
			continue
		}
		fired[rule.Name] = true
		out = append(out, Candidate{Rule: rule.Name, TargetFieldID: rule.Target, RawValue: value})
	}
	return out
}

func excluded(rule Rule, fired map[RuleName]bool) bool {
	for _, other := range rule.Excludes {
		if fired[other] {
			return true
		}
	}
	return false
}

// Payload decodes a loosely keyed tool-call mapping. Keys are tried in order
// and the first one holding a non-blank value wins. A payload missing either
// side yields a *MissingParameterError.
func (e *Extractor) Payload(payload map[string]any) (ToolCall, error) {
	field, ok := lookup(payload, e.fieldKeys)
	if !ok {
		return ToolCall{}, &MissingParameterError{Parameter: ParameterField, Keys: e.fieldKeys}
	}
	value, ok := lookup(payload, e.valueKeys)
	if !ok {
		return ToolCall{}, &MissingParameterError{Parameter: ParameterValue, Keys: e.valueKeys}
	}
	return ToolCall{FieldHint: field, Value: value}, nil
}

func lookup(payload map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		raw, ok := payload[key]
		if !ok || raw == nil {
			continue
		}
		var value string
		switch v := raw.(type) {
		case string:
			value = v
		case float64:
			value = strconv.FormatFloat(v, 'f', -1, 64)
		case fmt.Stringer:
			value = v.String()
		default:
			value = fmt.Sprint(v)
		}
		value = Sanitize(value)
		if value != "" {
			return value, true
		}
	}
	return "", false
}

// Sanitize strips markup (HTML or SSML tags), decodes entities and collapses
// whitespace.
func Sanitize(text string) string {
	if strings.ContainsAny(text, "<&") {
		text = html.UnescapeString(markupPolicy().Sanitize(text))
	}
	return strings.Join(strings.Fields(text), " ")
}
