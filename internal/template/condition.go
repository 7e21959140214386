package template

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/polyseam/cndi/internal/template/macro"
)

// Comparator is a binary predicate between a condition input and its
// standard, both already coerced to the standard's type.
type Comparator func(input, standard any) bool

// Comparators is the closed set of condition comparators.
var Comparators = map[string]Comparator{
	"==":     equal,
	"!=":     func(a, b any) bool { return !equal(a, b) },
	">":      ordered(func(c int) bool { return c > 0 }),
	"<":      ordered(func(c int) bool { return c < 0 }),
	">=":     ordered(func(c int) bool { return c >= 0 }),
	"<=":     ordered(func(c int) bool { return c <= 0 }),
	"in":     member,
	"not_in": func(a, b any) bool { return !member(a, b) },
}

// ComparatorNames returns the comparator symbols, sorted.
func ComparatorNames() []string {
	names := make([]string, 0, len(Comparators))
	for name := range Comparators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var singleCallRegex = regexp.MustCompile(`^\{\{\$cndi\.get_prompt_response\(([^)]*)\)\}\}$`)

// EvaluateCondition evaluates `[input, comparator, standard]`. An absent
// condition is true. An input that still references an unknown or
// undefined response is false.
func (s *Session) EvaluateCondition(cond Condition) (bool, error) {
	if cond == nil {
		return true, nil
	}
	if len(cond) != 3 {
		return false, newError(CodeInvalidCondition, fmt.Sprint(cond), "condition must have exactly 3 elements, got %d", len(cond))
	}

	symbol, ok := cond[1].(string)
	if !ok {
		return false, newError(CodeInvalidCondition, fmt.Sprint(cond), "comparator must be a string")
	}
	compare, ok := Comparators[symbol]
	if !ok {
		return false, newError(CodeUnknownComparator, symbol, "unknown comparator, expected one of %s", strings.Join(ComparatorNames(), " "))
	}

	input := cond[0]
	if str, isString := input.(string); isString {
		str = macro.NormalizeBraces(str)
		if m := singleCallRegex.FindStringSubmatch(str); m != nil {
			v, _ := s.Responses.Get(m[1])
			if v == nil {
				s.logger.Warn("condition references an undefined response, treating as false", "response", m[1])
				return false, nil
			}
			input = v
		} else {
			str = macro.LiteralizePromptResponses(str, s.Responses.All())
			if macro.HasUnresolvedPromptResponse(str) {
				s.logger.Warn("condition input is unresolved, treating as false", "input", str)
				return false, nil
			}
			input = str
		}
	}
	if input == nil {
		s.logger.Warn("condition input is undefined, treating as false")
		return false, nil
	}

	input, standard, err := coerce(input, cond[2])
	if err != nil {
		s.logger.Warn("condition input does not match standard, treating as false", "error", err)
		return false, nil
	}
	return compare(input, standard), nil
}

// coerce converts input to the type of standard. A numeric standard reads
// input as an integer, truncating any fraction. Booleans compare against
// the text "true", everything else as strings.
func coerce(input, standard any) (any, any, error) {
	switch std := standard.(type) {
	case int:
		n, err := toInteger(input)
		return n, float64(std), err
	case int64:
		n, err := toInteger(input)
		return n, float64(std), err
	case uint64:
		n, err := toInteger(input)
		return n, float64(std), err
	case float64:
		n, err := toInteger(input)
		return n, std, err
	case bool:
		if b, ok := input.(bool); ok {
			return b, std, nil
		}
		return macro.Stringify(input) == "true", std, nil
	case []any, []string:
		return input, std, nil
	default:
		return macro.Stringify(input), macro.Stringify(std), nil
	}
}

// toInteger returns the integer part of v as a float64.
func toInteger(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		return math.Trunc(n), nil
	default:
		text := strings.TrimSpace(macro.Stringify(v))
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return float64(i), nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%q is not a number", text)
		}
		return math.Trunc(f), nil
	}
}

func equal(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	default:
		return macro.Stringify(a) == macro.Stringify(b)
	}
}

func ordered(accept func(int) bool) Comparator {
	return func(a, b any) bool {
		switch x := a.(type) {
		case float64:
			y, ok := b.(float64)
			if !ok {
				return false
			}
			switch {
			case x < y:
				return accept(-1)
			case x > y:
				return accept(1)
			default:
				return accept(0)
			}
		case string:
			y, ok := b.(string)
			return ok && accept(strings.Compare(x, y))
		default:
			return false
		}
	}
}

// member reports whether input is one of the items of standard. A string
// standard is read as a comma separated list.
func member(a, b any) bool {
	needle := macro.Stringify(a)
	var items []string
	switch list := b.(type) {
	case []any:
		for _, item := range list {
			items = append(items, macro.Stringify(item))
		}
	case []string:
		items = list
	default:
		for _, item := range strings.Split(macro.Stringify(b), ",") {
			items = append(items, strings.TrimSpace(item))
		}
	}
	for _, item := range items {
		if item == needle {
			return true
		}
	}
	return false
}
