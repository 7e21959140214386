package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffYAML(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		wantDiff bool
		contains string
	}{
		{
			name: "identical documents",
			from: "provider: aws\ndistribution: eks\n",
			to:   "provider: aws\ndistribution: eks\n",
		},
		{
			name: "key order is not a difference",
			from: "provider: aws\ndistribution: eks\n",
			to:   "distribution: eks\nprovider: aws\n",
		},
		{
			name:     "changed value",
			from:     "provider: aws\n",
			to:       "provider: gcp\n",
			wantDiff: true,
			contains: "gcp",
		},
		{
			name: "both empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, err := DiffYAML([]byte(tt.from), []byte(tt.to), false)
			require.NoError(t, err)
			if !tt.wantDiff {
				assert.Empty(t, diff)
				return
			}
			assert.NotEmpty(t, diff)
			assert.Contains(t, diff, tt.contains)
		})
	}
}

func TestIndentDiff(t *testing.T) {
	assert.Equal(t, "  a\n  b\n", IndentDiff("a\n\nb", "  "))
	assert.Empty(t, IndentDiff("", "  "))
}
