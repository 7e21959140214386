// Package validators holds the closed table of prompt response validators.
//
// A validator receives the candidate value, the prompt type and the
// validator argument, and returns an error message for the user or the
// empty string when the value is acceptable.
package validators

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
)

// Input is what a validator sees.
type Input struct {
	Value any
	Type  string
	Arg   any
}

// Func validates an Input.
type Func func(in Input) string

var (
	validate  = validator.New()
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// BuiltIn is the set of validators templates may reference by name.
var BuiltIn = map[string]Func{
	"email":      tag("email", "must be a valid email address"),
	"url":        tag("url", "must be a valid URL"),
	"hostname":   tag("hostname_rfc1123", "must be a valid hostname"),
	"cidr":       tag("cidr", "must be a valid CIDR block"),
	"ip":         tag("ip", "must be a valid IP address"),
	"is_slug":    isSlug,
	"semver":     isSemver,
	"min_length": minLength,
	"max_length": maxLength,
	"regex":      matchRegex,
}

// Lookup returns the validator registered under name.
func Lookup(name string) (Func, bool) {
	fn, ok := BuiltIn[name]
	return fn, ok
}

// Names returns the registered validator names, sorted.
func Names() []string {
	names := make([]string, 0, len(BuiltIn))
	for name := range BuiltIn {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func tag(t, msg string) Func {
	return func(in Input) string {
		s := str(in.Value)
		if err := validate.Var(s, "required,"+t); err != nil {
			return fmt.Sprintf("%q %s", s, msg)
		}
		return ""
	}
}

func isSlug(in Input) string {
	s := str(in.Value)
	if !slugRegex.MatchString(s) {
		return fmt.Sprintf("%q must contain only lowercase letters, digits and single hyphens", s)
	}
	return ""
}

func isSemver(in Input) string {
	s := str(in.Value)
	if _, err := semver.NewVersion(s); err != nil {
		return fmt.Sprintf("%q must be a semantic version: %v", s, err)
	}
	return ""
}

func minLength(in Input) string {
	n, err := intArg(in.Arg)
	if err != nil {
		return "min_length: " + err.Error()
	}
	if length(in.Value) < n {
		return fmt.Sprintf("must be at least %d characters long", n)
	}
	return ""
}

func maxLength(in Input) string {
	n, err := intArg(in.Arg)
	if err != nil {
		return "max_length: " + err.Error()
	}
	if length(in.Value) > n {
		return fmt.Sprintf("must be at most %d characters long", n)
	}
	return ""
}

func matchRegex(in Input) string {
	pattern, ok := in.Arg.(string)
	if !ok || pattern == "" {
		return "regex: a pattern argument is required"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Sprintf("regex: invalid pattern %q: %v", pattern, err)
	}
	if s := str(in.Value); !re.MatchString(s) {
		return fmt.Sprintf("%q must match %s", s, pattern)
	}
	return ""
}

// length counts runes of strings and items of lists.
func length(v any) int {
	switch val := v.(type) {
	case []any:
		return len(val)
	case []string:
		return len(val)
	default:
		return utf8.RuneCountInString(str(v))
	}
}

func str(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func intArg(arg any) (int, error) {
	switch v := arg.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("argument %q is not an integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("argument %v is not an integer", arg)
	}
}
