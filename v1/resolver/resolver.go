package resolver

import (
	"fmt"

	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

// Result is a resolved span name plus initial attributes.
type Result struct {
	Name       string
	Attributes map[string]interface{}
	// Fallback is set when the entry's template was bypassed.
	Fallback bool
}

// Template resolves the name of one registry entry.
type Template func(target any, args []any) (Result, error)

// Rule is one row of the built-in pattern table.
type Rule struct {
	// Kind restricts the rule to one span kind. Zero matches every kind.
	Kind tracer.SpanKind
	// Match reports whether the call shape fits the rule.
	Match func(target any, args []any) bool
	// Name builds the span name for a matching call.
	Name func(target any, args []any) string
}

// Resolver applies templates with the built-in rule table as fallback.
type Resolver struct {
	rules []Rule
}

// New returns a Resolver with the built-in rules, followed by extra.
func New(extra ...Rule) *Resolver {
	rules := append(defaultRules(), extra...)
	return &Resolver{rules: rules}
}

// Resolve returns the span name for a call of method on target with args.
// tmpl may be nil. The result always has a non-empty Name.
func (r *Resolver) Resolve(kind tracer.SpanKind, method string, target any, args []any, tmpl Template) Result {
	if tmpl != nil {
		if res, ok := safeTemplate(tmpl, target, args); ok && res.Name != "" {
			res.Fallback = false
			return res
		}
	}

	if name := r.ruleName(kind, target, args); name != "" {
		return Result{Name: name, Fallback: true}
	}

	return Result{Name: Fallback(target, method), Fallback: true}
}

// Fallback is the deterministic last-resort name: "<Type>.<method>", or just
// method when the target has no usable type.
func Fallback(target any, method string) string {
	if method == "" {
		method = "call"
	}
	if tn := TypeName(target); tn != "" {
		return tn + "." + method
	}
	return method
}

func (r *Resolver) ruleName(kind tracer.SpanKind, target any, args []any) (name string) {
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()

	for _, rule := range r.rules {
		if rule.Kind != 0 && rule.Kind != kind {
			continue
		}
		if rule.Match != nil && !rule.Match(target, args) {
			continue
		}
		if n := rule.Name(target, args); n != "" {
			return n
		}
	}
	return ""
}

func safeTemplate(tmpl Template, target any, args []any) (res Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			res, ok = Result{}, false
		}
	}()

	res, err := tmpl(target, args)
	if err != nil {
		return Result{}, false
	}
	return res, true
}

func defaultRules() []Rule {
	return []Rule{
		{
			Kind:  tracer.SpanKindRoot,
			Match: func(target any, _ []any) bool { return TypeName(target) != "" },
			Name: func(target any, _ []any) string {
				tn := TypeName(target)
				label := FieldString(target, "Name")
				if label == "" {
					label = tn
				}
				return fmt.Sprintf("%s Execution: %s", tn, label)
			},
		},
		{
			Kind:  tracer.SpanKindNested,
			Match: func(_ any, args []any) bool { return FirstString(args) != "" },
			Name:  func(_ any, args []any) string { return FirstString(args) },
		},
		{
			Kind: tracer.SpanKindLeaf,
			Name: func(target any, _ []any) string {
				for _, field := range []string{"Name", "ID", "Role", "Description"} {
					if v := FieldString(target, field); v != "" {
						return Truncate(v, DefaultMaxNameLength)
					}
				}
				return ""
			},
		},
		{
			Match: func(target any, _ []any) bool { return TypeName(target) != "" },
			Name:  func(target any, _ []any) string { return TypeName(target) },
		},
	}
}
