package biz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/internal/pkg/textutil"
)

func scored(docs ...model.Document) []ScoredDocument {
	items := make([]ScoredDocument, len(docs))
	for i := range docs {
		items[i] = ScoredDocument{Document: &docs[i], Position: i, Score: 1}
	}
	return items
}

func TestAssembleEntryFormat(t *testing.T) {
	doc := model.Document{ID: "1", Title: "Hajj", Subject: []string{"Islam", "Pèlerinage"}, Publisher: "X", Date: "1996", FullText: "Texte."}
	block := NewAssembler(3000, 500).Assemble(scored(doc))

	want := "[1] Title: Hajj\nSubject: Islam, Pèlerinage\nPublisher: X\nDate: 1996\nContent: Texte.\n\n"
	assert.Equal(t, want, block.Text)
	assert.Equal(t, textutil.CountTokens(want), block.Tokens)
	assert.False(t, block.Truncated)
	require.Len(t, block.Documents, 1)
}

func TestAssembleStopsAtFirstDocumentOverBudget(t *testing.T) {
	small := model.Document{ID: "a", Title: "A", FullText: "court"}
	huge := model.Document{ID: "b", Title: "B", FullText: strings.Repeat("long ", 400)}
	tail := model.Document{ID: "c", Title: "C", FullText: "court"}

	block := NewAssembler(100, 0).Assemble(scored(small, huge, tail))
	require.Len(t, block.Documents, 1)
	assert.Equal(t, "a", block.Documents[0].ID)
	assert.NotContains(t, block.Text, "[2]")
	assert.False(t, block.Truncated)
}

func TestAssembleNeverExceedsBudget(t *testing.T) {
	docs := []model.Document{
		{ID: "1", Title: "Un", FullText: strings.Repeat("hadj Kérékou ", 80)},
		{ID: "2", Title: "Deux", FullText: strings.Repeat("laïcité ", 60)},
		{ID: "3", Title: "Trois", FullText: strings.Repeat("ramadan ", 30)},
	}
	for _, budget := range []int{1, 5, 20, 50, 120, 300, 3000} {
		for _, excerpt := range []int{0, 10, 500} {
			block := NewAssembler(budget, excerpt).Assemble(scored(docs...))
			assert.LessOrEqual(t, block.Tokens, budget, "budget=%d excerpt=%d", budget, excerpt)
			assert.LessOrEqual(t, textutil.CountTokens(block.Text), block.Tokens, "budget=%d excerpt=%d", budget, excerpt)
			assert.NotEmpty(t, block.Documents, "budget=%d excerpt=%d", budget, excerpt)
		}
	}
}

func TestAssembleTruncatesTopDocument(t *testing.T) {
	doc := model.Document{ID: "1", Title: "Hajj", FullText: strings.Repeat("pèlerinage ", 500)}
	block := NewAssembler(60, 0).Assemble(scored(doc, hadjDocs[1]))

	assert.True(t, block.Truncated)
	require.Len(t, block.Documents, 1)
	assert.Equal(t, "1", block.Documents[0].ID)
	assert.Contains(t, block.Text, "…")
	assert.LessOrEqual(t, block.Tokens, 60)
}

func TestAssembleExcerptLimit(t *testing.T) {
	doc := model.Document{ID: "1", Title: "Hajj", FullText: strings.Repeat("mot ", 200)}
	block := NewAssembler(3000, 10).Assemble(scored(doc))

	assert.False(t, block.Truncated)
	content := block.Text[strings.Index(block.Text, "Content: ")+len("Content: "):]
	assert.LessOrEqual(t, textutil.CountTokens(strings.TrimRight(content, "\n")), 10)
}

func TestAssembleEmpty(t *testing.T) {
	assert.True(t, NewAssembler(3000, 500).Assemble(nil).Empty())
	assert.True(t, NewAssembler(0, 500).Assemble(scored(hadjDocs...)).Empty())
}

func TestAttribute(t *testing.T) {
	docs := []model.Document{hadjDocs[1], hadjDocs[0], hadjDocs[1]}
	block := &ContextBlock{Documents: []*model.Document{&docs[0], &docs[1], &docs[2]}}

	sources := Attribute(block)
	require.Len(t, sources, 2)
	assert.Equal(t, "Secularism views", sources[0].Title)
	assert.Equal(t, "http://a", sources[1].URL)

	empty := Attribute(&ContextBlock{})
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.NotNil(t, Attribute(nil))
}
