// Package macro implements the textual macro passes of the CNDI template
// language: prompt response and argument literalization, random strings,
// comments, and brace whitespace normalization.
//
// Every function is pure text-in, text-out. Callers normalize braces first
// so the fixed-token expressions below match author-formatted templates.
package macro

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// PromptResponseCall is the macro reading a stored prompt response.
	PromptResponseCall = "$cndi.get_prompt_response"

	// ArgCall is the macro reading an argument passed to a block call.
	ArgCall = "$cndi.get_arg"

	// RandomStringCall is the macro generating a random alphanumeric string.
	RandomStringCall = "$cndi.get_random_string"

	// BlockCall is the macro importing a block, used as a mapping key.
	BlockCall = "$cndi.get_block"

	// CommentCall is the macro emitting a comment, used as a mapping key.
	CommentCall = "$cndi.comment"

	// StringCall is the macro fetching external text, readme only.
	StringCall = "$cndi.get_string"

	// DefaultRandomStringLength is used when get_random_string has no argument.
	DefaultRandomStringLength = 32

	// MaxRandomStringLength is the longest string get_random_string makes.
	MaxRandomStringLength = 4096
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	bracesRegex       = regexp.MustCompile(`\{\{(.*?)\}\}`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	randomStringRegex = regexp.MustCompile(`\{\{\$cndi\.get_random_string\((\d*)\)\}\}`)
	commentLineRegex  = regexp.MustCompile(`(?m)^([ \t]*(?:- )?)['"]?\$cndi\.comment\([^)\n]*\)['"]?:[ \t]*(.*?)[ \t]*$`)
	unresolvedRegex   = regexp.MustCompile(`\$cndi\.get_prompt_response\(`)
)

// NormalizeBraces removes all whitespace inside {{ ... }} delimiters, so
// "{{ $cndi.get_prompt_response( name ) }}" becomes
// "{{$cndi.get_prompt_response(name)}}".
func NormalizeBraces(text string) string {
	return bracesRegex.ReplaceAllStringFunc(text, func(m string) string {
		inner := m[2 : len(m)-2]
		return "{{" + whitespaceRegex.ReplaceAllString(inner, "") + "}}"
	})
}

// LiteralizePromptResponses replaces every get_prompt_response call whose
// name is present in responses.
//
// A call that is the whole of a quoted YAML scalar is replaced, quotes
// included, by the YAML form of the value so booleans, numbers and lists
// keep their native type. A call embedded in a larger string is replaced by
// the value's string form. Calls to unknown names are left untouched.
func LiteralizePromptResponses(text string, responses map[string]any) string {
	return literalizeCalls(text, PromptResponseCall, responses)
}

// LiteralizeArgs applies the LiteralizePromptResponses rules to get_arg
// calls using the arguments of a block call.
func LiteralizeArgs(text string, args map[string]any) string {
	return literalizeCalls(text, ArgCall, args)
}

// HasUnresolvedPromptResponse reports whether text still contains a
// get_prompt_response call.
func HasUnresolvedPromptResponse(text string) bool {
	return unresolvedRegex.MatchString(text)
}

func literalizeCalls(text, call string, values map[string]any) string {
	if len(values) == 0 || !strings.Contains(text, call+"(") {
		return text
	}

	// Longest names first so a name never clobbers a longer name sharing its prefix.
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		token := "{{" + call + "(" + name + ")}}"
		if !strings.Contains(text, token) {
			continue
		}
		value := values[name]

		text = strings.ReplaceAll(text, "'"+token+"'", QuotedScalar(value, '\''))
		text = strings.ReplaceAll(text, `"`+token+`"`, QuotedScalar(value, '"'))
		text = strings.ReplaceAll(text, token, Stringify(value))
	}

	return text
}

// QuotedScalar renders value as a YAML flow scalar to stand in for a quoted
// macro call. Strings stay strings and keep the original quote style where
// possible; everything else takes its native YAML form. Undefined is null.
func QuotedScalar(value any, quote byte) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		if quote == '\'' && !strings.ContainsAny(v, "\n\r") {
			return "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		return strconv.Quote(v)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = QuotedScalar(item, '"')
		}
		return "[" + strings.Join(items, ", ") + "]"
	case []string:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = strconv.Quote(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return Stringify(v)
	}
}

// Stringify returns the string form of a response value as it appears when
// embedded in a larger string. Undefined renders as the empty string and
// lists join their items with commas.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = Stringify(item)
		}
		return strings.Join(items, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// LiteralizeRandomStrings replaces every get_random_string call with a fresh
// cryptographically random alphanumeric string. Each occurrence gets its
// own string.
func LiteralizeRandomStrings(text string) (string, error) {
	var genErr error
	out := randomStringRegex.ReplaceAllStringFunc(text, func(m string) string {
		if genErr != nil {
			return m
		}
		length := DefaultRandomStringLength
		if arg := randomStringRegex.FindStringSubmatch(m)[1]; arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil {
				genErr = fmt.Errorf("invalid random string length %q: %w", arg, err)
				return m
			}
			length = n
		}
		s, err := RandomString(length)
		if err != nil {
			genErr = err
			return m
		}
		return s
	})
	if genErr != nil {
		return "", genErr
	}
	return out, nil
}

// RandomString returns a cryptographically random alphanumeric string.
func RandomString(length int) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("random string length must not be negative: %d", length)
	}
	if length > MaxRandomStringLength {
		return "", fmt.Errorf("random string length %d exceeds the maximum of %d", length, MaxRandomStringLength)
	}
	max := big.NewInt(int64(len(alphanumeric)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		b[i] = alphanumeric[n.Int64()]
	}
	return string(b), nil
}

// ProcessComments rewrites `$cndi.comment(anything): "value"` lines into
// YAML comment lines `# value`, stripping wrapping quotes.
func ProcessComments(text string) string {
	return commentLineRegex.ReplaceAllStringFunc(text, func(line string) string {
		m := commentLineRegex.FindStringSubmatch(line)
		indent := strings.TrimSuffix(m[1], "- ")
		return indent + "# " + Unquote(m[2])
	})
}

// Unquote strips one pair of matching wrapping quotes, unescaping YAML
// quote doubling for single quotes.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	switch {
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	case s[0] == '"' && s[len(s)-1] == '"':
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}

// CallArgument returns the text between the parentheses of a macro call
// such as `$cndi.get_block(foo)`, and whether the text is such a call.
func CallArgument(text, call string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, call+"(") {
		return "", false
	}
	end := strings.LastIndex(text, ")")
	if end < len(call)+1 {
		return "", false
	}
	return strings.TrimSpace(text[len(call)+1 : end]), true
}

// IsCall reports whether a mapping key is a call of the given macro.
func IsCall(key, call string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), call)
}
