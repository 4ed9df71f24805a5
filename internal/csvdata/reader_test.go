package csvdata

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagemark/engagemark/pkg/types"
)

const sampleCSV = `Platform,Post ID,Likes,Sentiment
Twitter,p1,100,Positive
Instagram,p2,200,Negative
Facebook,p3
`

func TestReader_RowsInFileOrder(t *testing.T) {
	r, err := NewReader(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Platform", "Post ID", "Likes", "Sentiment"}, r.Headers())

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "Twitter", row.Get(types.FieldPlatform))
	assert.Equal(t, "p1", row.Get(types.FieldPostID))
	assert.Equal(t, "100", row.Get(types.FieldLikes))

	row, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "Instagram", row.Get(types.FieldPlatform))

	// Ragged line: missing trailing cells leave fields absent.
	row, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "Facebook", row.Get(types.FieldPlatform))
	_, hasSentiment := row["Sentiment"]
	assert.False(t, hasSentiment)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_QuotedCells(t *testing.T) {
	input := "Platform,Post Content\nTwitter,\"hello, world\"\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "hello, world", row.Get(types.FieldPostContent))
}

func TestReader_EmptyInput(t *testing.T) {
	_, err := NewReader(strings.NewReader(""))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	count := 0
	for {
		_, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 3, count)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
