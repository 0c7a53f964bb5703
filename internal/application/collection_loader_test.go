package application

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
)

const validCollectionYAML = `
version: "1.0"
groups:
  - id: round_one
    ratings:
      - name: Alien
        score: 10
      - name: Blade Runner
        score: 5
  - id: round_two
    ratings:
      - name: Alien
        score: 3
`

// TestCollectionLoader_LoadFromReader verifies parsing of a valid
// document into a domain collection, preserving group and rating order.
func TestCollectionLoader_LoadFromReader(t *testing.T) {
	loader := NewCollectionLoader()

	collection, err := loader.LoadFromReader(context.Background(), strings.NewReader(validCollectionYAML))
	require.NoError(t, err)

	expected := domain.Collection{
		{{Name: "Alien", Score: 10}, {Name: "Blade Runner", Score: 5}},
		{{Name: "Alien", Score: 3}},
	}
	assert.Equal(t, expected, collection)

	// Loaded collections feed straight into aggregation.
	leaderboard := domain.Aggregate(collection)
	assert.Equal(t, []domain.Rating{
		{Name: "Alien", Score: 13},
		{Name: "Blade Runner", Score: 5},
	}, leaderboard)
}

// TestCollectionLoader_LoadFromFile verifies file-based loading.
func TestCollectionLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collection.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validCollectionYAML), 0o600))

	loader := NewCollectionLoader()

	collection, err := loader.LoadFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, collection, 2)

	_, err = loader.LoadFromFile(context.Background(), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

// TestCollectionLoader_InvalidDocuments covers syntax errors, schema
// violations, and rating-level validation failures.
func TestCollectionLoader_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name          string
		document      string
		expectedError string
	}{
		{
			name:          "rejects malformed yaml",
			document:      "version: [unclosed",
			expectedError: "invalid collection",
		},
		{
			name:          "rejects unknown fields",
			document:      "version: \"1.0\"\nrounds: []\n",
			expectedError: "invalid collection",
		},
		{
			name:          "rejects missing version",
			document:      "groups: []\n",
			expectedError: "struct validation failed",
		},
		{
			name:          "rejects unsupported version",
			document:      "version: \"2.0\"\ngroups: []\n",
			expectedError: "struct validation failed",
		},
		{
			name: "reports every unnamed rating",
			document: `
version: "1.0"
groups:
  - ratings:
      - name: ""
        score: 1
      - name: Alien
        score: 2
  - ratings:
      - name: ""
        score: 3
`,
			expectedError: "validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewCollectionLoader()

			_, err := loader.LoadFromReader(context.Background(), strings.NewReader(tt.document))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
			assert.ErrorIs(t, err, domain.ErrInvalidCollection)
		})
	}
}

// TestCollectionLoader_CacheIsolation verifies that repeated loads of
// the same document are equal and that mutating one result does not
// bleed into the cache.
func TestCollectionLoader_CacheIsolation(t *testing.T) {
	loader := NewCollectionLoader()
	ctx := context.Background()

	first, err := loader.LoadFromReader(ctx, strings.NewReader(validCollectionYAML))
	require.NoError(t, err)

	// Corrupt the first result, then reload.
	first[0][0].Score = -999

	second, err := loader.LoadFromReader(ctx, strings.NewReader(validCollectionYAML))
	require.NoError(t, err)
	assert.Equal(t, 10, second[0][0].Score, "cached collection must be isolated from callers")
}

// TestCollectionLoader_NormalizedCacheKey verifies that formatting-only
// differences between documents land on the same cache entry.
func TestCollectionLoader_NormalizedCacheKey(t *testing.T) {
	loader := NewCollectionLoader()
	ctx := context.Background()

	reformatted := strings.ReplaceAll(validCollectionYAML, "score: 10", "score:    10")

	first, err := loader.LoadFromReader(ctx, strings.NewReader(validCollectionYAML))
	require.NoError(t, err)
	second, err := loader.LoadFromReader(ctx, strings.NewReader(reformatted))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, loader.cache, 1, "equivalent documents should share one cache entry")
}
