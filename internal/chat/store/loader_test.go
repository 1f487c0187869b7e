package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

func TestParseDocumentsArray(t *testing.T) {
	docs, err := ParseDocuments([]byte(sampleCorpus))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, []string{"Pèlerinage", "Islam"}, docs[0].Subject)
	assert.Equal(t, []string{"Bénin"}, docs[1].Spatial)
	assert.Nil(t, docs[2].Subject)
}

func TestParseDocumentsObject(t *testing.T) {
	data := `{"tfidf_matrix": [[0.1]], "documents": [
		{"title": "A", "content": "texte A", "publisher": "P", "date": 1996, "subject": "Islam|Politique| "},
		{"o:id": 7, "title": "B", "full_text": "texte B"}
	]}`

	docs, err := ParseDocuments([]byte(data))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Equal(t, "texte A", docs[0].FullText)
	assert.Equal(t, "1996", docs[0].Date)
	assert.Equal(t, []string{"Islam", "Politique"}, docs[0].Subject)
	assert.Equal(t, "doc-2", docs[1].ID)
}

func TestParseDocumentsNumericID(t *testing.T) {
	docs, err := ParseDocuments([]byte(`[{"id": 42, "title": "A", "full_text": "x"}]`))
	require.NoError(t, err)
	assert.Equal(t, "42", docs[0].ID)
}

func TestParseDocumentsFailures(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "not json", data: `{not json`},
		{name: "missing documents key", data: `{"items": []}`, want: "documents"},
		{name: "missing title", data: `[{"full_text": "x"}]`, want: "record 1"},
		{name: "blank text", data: `[{"title": "A", "full_text": "x"}, {"title": "B", "full_text": "  "}]`, want: "record 2"},
		{name: "bad id type", data: `[{"id": {"a": 1}, "title": "A", "full_text": "x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocuments([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrCorpusLoad)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestParseDocumentsEmptyArray(t *testing.T) {
	docs, err := ParseDocuments([]byte(` [] `))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFileLoaderMissingFile(t *testing.T) {
	loader := NewFileLoader(filepath.Join(t.TempDir(), "missing.json"))
	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, errors.ErrCorpusLoad)
}

func TestLoadDuplicateIDsFailsWholeLoad(t *testing.T) {
	path := writeCorpus(t, `[{"id": "a", "title": "A", "full_text": "x"}, {"id": "a", "title": "B", "full_text": "y"}]`)
	_, err := Load(context.Background(), NewFileLoader(path), nil)
	assert.ErrorIs(t, err, errors.ErrCorpusLoad)
}
