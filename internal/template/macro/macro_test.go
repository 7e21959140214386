package macro

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBraces(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "spaces around call",
			in:   "region: '{{ $cndi.get_prompt_response( region ) }}'",
			want: "region: '{{$cndi.get_prompt_response(region)}}'",
		},
		{
			name: "tabs inside braces",
			in:   "x: {{\t$cndi.get_random_string(\t8 )}}",
			want: "x: {{$cndi.get_random_string(8)}}",
		},
		{
			name: "whitespace outside braces kept",
			in:   "a b {{ x }} c d",
			want: "a b {{x}} c d",
		},
		{
			name: "no braces",
			in:   "plain: text with spaces",
			want: "plain: text with spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBraces(tt.in))
		})
	}
}

func TestLiteralizePromptResponses(t *testing.T) {
	responses := map[string]any{
		"region":   "us-east-1",
		"count":    3,
		"enabled":  true,
		"apps":     []any{"a", "b"},
		"quote":    "it's",
		"missing":  nil,
		"multi":    "line1\nline2",
		"host":     "example.com",
		"ratio":    1.5,
		"hostname": "node",
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single quoted string",
			in:   "region: '{{$cndi.get_prompt_response(region)}}'",
			want: "region: 'us-east-1'",
		},
		{
			name: "double quoted number becomes native",
			in:   `count: "{{$cndi.get_prompt_response(count)}}"`,
			want: "count: 3",
		},
		{
			name: "single quoted bool becomes native",
			in:   "enabled: '{{$cndi.get_prompt_response(enabled)}}'",
			want: "enabled: true",
		},
		{
			name: "list becomes flow sequence",
			in:   "apps: '{{$cndi.get_prompt_response(apps)}}'",
			want: `apps: ["a", "b"]`,
		},
		{
			name: "single quote escaped",
			in:   "q: '{{$cndi.get_prompt_response(quote)}}'",
			want: "q: 'it''s'",
		},
		{
			name: "undefined quoted becomes null",
			in:   "m: '{{$cndi.get_prompt_response(missing)}}'",
			want: "m: null",
		},
		{
			name: "undefined embedded becomes empty",
			in:   "m: 'x-{{$cndi.get_prompt_response(missing)}}'",
			want: "m: 'x-'",
		},
		{
			name: "multiline string double quoted",
			in:   "m: '{{$cndi.get_prompt_response(multi)}}'",
			want: `m: "line1\nline2"`,
		},
		{
			name: "embedded in larger string",
			in:   `url: "https://{{$cndi.get_prompt_response(host)}}/path"`,
			want: `url: "https://example.com/path"`,
		},
		{
			name: "embedded list joins with commas",
			in:   "apps: x{{$cndi.get_prompt_response(apps)}}",
			want: "apps: xa,b",
		},
		{
			name: "float",
			in:   "r: {{$cndi.get_prompt_response(ratio)}}",
			want: "r: 1.5",
		},
		{
			name: "name sharing a prefix",
			in:   "h: {{$cndi.get_prompt_response(hostname)}}-{{$cndi.get_prompt_response(host)}}",
			want: "h: node-example.com",
		},
		{
			name: "unknown name untouched",
			in:   "x: '{{$cndi.get_prompt_response(nope)}}'",
			want: "x: '{{$cndi.get_prompt_response(nope)}}'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LiteralizePromptResponses(tt.in, responses))
		})
	}
}

func TestLiteralizePromptResponses_Idempotent(t *testing.T) {
	responses := map[string]any{"region": "us-east-1", "nodes": 3}
	in := "region: '{{$cndi.get_prompt_response(region)}}'\nnodes: \"{{$cndi.get_prompt_response(nodes)}}\"\nname: cluster-{{$cndi.get_prompt_response(region)}}\n"

	once := LiteralizePromptResponses(in, responses)
	twice := LiteralizePromptResponses(once, responses)

	assert.Equal(t, once, twice)
	assert.NotContains(t, once, PromptResponseCall)
}

func TestLiteralizeArgs(t *testing.T) {
	args := map[string]any{"size": 20, "label": "db"}
	in := "disk: '{{$cndi.get_arg(size)}}'\nname: '{{$cndi.get_arg(label)}}-vol'\nkeep: '{{$cndi.get_prompt_response(size)}}'"

	got := LiteralizeArgs(in, args)

	assert.Equal(t, "disk: 20\nname: 'db-vol'\nkeep: '{{$cndi.get_prompt_response(size)}}'", got)
}

func TestHasUnresolvedPromptResponse(t *testing.T) {
	assert.True(t, HasUnresolvedPromptResponse("{{$cndi.get_prompt_response(x)}}"))
	assert.True(t, HasUnresolvedPromptResponse("$cndi.get_prompt_response(x)"))
	assert.False(t, HasUnresolvedPromptResponse("us-east-1"))
}

func TestLiteralizeRandomStrings(t *testing.T) {
	alnum := regexp.MustCompile(`^[A-Za-z0-9]+$`)

	out, err := LiteralizeRandomStrings("a: {{$cndi.get_random_string(8)}}\nb: {{$cndi.get_random_string(8)}}")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	a := strings.TrimPrefix(lines[0], "a: ")
	b := strings.TrimPrefix(lines[1], "b: ")

	assert.Len(t, a, 8)
	assert.Len(t, b, 8)
	assert.Regexp(t, alnum, a)
	assert.Regexp(t, alnum, b)
	assert.NotEqual(t, a, b, "each occurrence gets a fresh string")
}

func TestLiteralizeRandomStrings_DefaultLength(t *testing.T) {
	out, err := LiteralizeRandomStrings("{{$cndi.get_random_string()}}")
	require.NoError(t, err)
	assert.Len(t, out, DefaultRandomStringLength)
}

func TestLiteralizeRandomStrings_NoCalls(t *testing.T) {
	out, err := LiteralizeRandomStrings("plain: value")
	require.NoError(t, err)
	assert.Equal(t, "plain: value", out)
}

func TestRandomString(t *testing.T) {
	s, err := RandomString(0)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = RandomString(-1)
	assert.Error(t, err)

	s, err = RandomString(MaxRandomStringLength)
	require.NoError(t, err)
	assert.Len(t, s, MaxRandomStringLength)

	_, err = RandomString(MaxRandomStringLength + 1)
	assert.ErrorContains(t, err, "exceeds the maximum")
}

func TestLiteralizeRandomStrings_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "too long", in: "pw: {{$cndi.get_random_string(4097)}}"},
		{name: "max int", in: "pw: {{$cndi.get_random_string(9223372036854775807)}}"},
		{name: "overflows int", in: "pw: {{$cndi.get_random_string(99999999999999999999)}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := LiteralizeRandomStrings(tt.in)
			require.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestProcessComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "double quoted value",
			in:   `  $cndi.comment(intro): "hello world"`,
			want: "  # hello world",
		},
		{
			name: "single quoted key and value",
			in:   `'$cndi.comment(x)': 'it''s here'`,
			want: "# it's here",
		},
		{
			name: "plain value",
			in:   "$cndi.comment(a): plain text",
			want: "# plain text",
		},
		{
			name: "other lines untouched",
			in:   "cluster:\n  $cndi.comment(n): \"nodes below\"\n  nodes: 3",
			want: "cluster:\n  # nodes below\n  nodes: 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProcessComments(tt.in))
		})
	}
}

func TestCallArgument(t *testing.T) {
	tests := []struct {
		in     string
		call   string
		want   string
		wantOK bool
	}{
		{"$cndi.get_block(https://example.com/b.yaml)", BlockCall, "https://example.com/b.yaml", true},
		{"$cndi.get_block( local )", BlockCall, "local", true},
		{"$cndi.get_block(./blocks/a.yaml){{extra}}", BlockCall, "./blocks/a.yaml", true},
		{"$cndi.get_string(x)", BlockCall, "", false},
		{"$cndi.get_block(", BlockCall, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CallArgument(tt.in, tt.call)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "42", Stringify(42))
	assert.Equal(t, "a,b", Stringify([]string{"a", "b"}))
	assert.Equal(t, "1,x", Stringify([]any{1, "x"}))
}
