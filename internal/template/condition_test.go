package template

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return NewSession(opts)
}

func TestEvaluateCondition(t *testing.T) {
	s := newTestSession(Options{Overrides: map[string]any{
		"provider": "aws",
		"nodes":    3,
		"enabled":  true,
		"missing":  nil,
	}})

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"absent condition", nil, true},
		{"string equality", Condition{"{{$cndi.get_prompt_response(provider)}}", "==", "aws"}, true},
		{"string inequality", Condition{"{{$cndi.get_prompt_response(provider)}}", "!=", "aws"}, false},
		{"unnormalized braces", Condition{"{{ $cndi.get_prompt_response( provider ) }}", "==", "aws"}, true},
		{"number from response", Condition{"{{$cndi.get_prompt_response(nodes)}}", ">", 2}, true},
		{"number from text", Condition{"5", "<=", 4}, false},
		{"number greater or equal", Condition{"4", ">=", 4}, true},
		{"number less than", Condition{3, "<", 3.5}, true},
		{"fractional text truncates", Condition{"3.7", ">", 3}, false},
		{"fractional text equals integer part", Condition{"3.7", "==", 3}, true},
		{"fractional input truncates", Condition{3.9, "==", 3}, true},
		{"negative fraction truncates toward zero", Condition{"-2.5", "==", -2}, true},
		{"bool from response", Condition{"{{$cndi.get_prompt_response(enabled)}}", "==", true}, true},
		{"bool from text true", Condition{"true", "==", true}, true},
		{"bool from text other", Condition{"yes", "==", true}, false},
		{"bool literal", Condition{true, "==", true}, true},
		{"undefined response", Condition{"{{$cndi.get_prompt_response(missing)}}", "==", ""}, false},
		{"unknown response", Condition{"{{$cndi.get_prompt_response(unknown)}}", "!=", "x"}, false},
		{"unknown response embedded", Condition{"p-{{$cndi.get_prompt_response(unknown)}}", "!=", "x"}, false},
		{"embedded response", Condition{"p-{{$cndi.get_prompt_response(provider)}}", "==", "p-aws"}, true},
		{"in list", Condition{"{{$cndi.get_prompt_response(provider)}}", "in", []any{"aws", "gcp"}}, true},
		{"not in list", Condition{"azure", "not_in", []any{"aws", "gcp"}}, true},
		{"in comma separated string", Condition{"gcp", "in", "aws, gcp"}, true},
		{"string ordering", Condition{"abc", ">=", "abd"}, false},
		{"not a number", Condition{"x", "==", 3}, false},
		{"null input", Condition{nil, "==", "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.EvaluateCondition(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateCondition_Errors(t *testing.T) {
	s := newTestSession(Options{})

	tests := []struct {
		name     string
		cond     Condition
		wantCode Code
	}{
		{"unknown comparator", Condition{"a", "~=", "b"}, CodeUnknownComparator},
		{"too short", Condition{"a", "=="}, CodeInvalidCondition},
		{"too long", Condition{"a", "==", "b", "c"}, CodeInvalidCondition},
		{"comparator not a string", Condition{"a", 1, "b"}, CodeInvalidCondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.EvaluateCondition(tt.cond)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, CodeOf(err))
		})
	}
}

func TestComparatorNames(t *testing.T) {
	assert.ElementsMatch(t, []string{"==", "!=", ">", "<", ">=", "<=", "in", "not_in"}, ComparatorNames())
}
