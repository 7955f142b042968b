package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns verse hits", func(t *testing.T) {
		mockSearch := &mockSearchService{
			result: &domain.SearchResult{
				Total: 7,
				Hits: []domain.Hit{{
					Verse: domain.Verse{
						ID: 1, SuraNo: 1, VerseNo: 1,
						TextArabic:  "بِسْمِ اللَّهِ",
						TextEnglish: "In the name of Allah",
					},
					Score: 3.5,
					Highlights: map[domain.TextField]string{
						domain.FieldEnglish: "In the name of <mark>Allah</mark>",
					},
				}},
			},
		}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "allah", Size: 3})

		require.NoError(t, err)
		assert.Equal(t, int64(7), output.Total)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Hits, 1)
		assert.Equal(t, int64(1), output.Hits[0].ID)
		assert.Equal(t, "In the name of Allah", output.Hits[0].English)
		assert.Equal(t, "In the name of <mark>Allah</mark>", output.Hits[0].Highlights["text_english"])
		assert.InDelta(t, 3.5, output.Hits[0].Score, 0.0001)
		assert.Equal(t, 3, mockSearch.gotSize)
	})

	t.Run("default size is 10", func(t *testing.T) {
		mockSearch := &mockSearchService{result: &domain.SearchResult{}}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 10, mockSearch.gotSize)
	})

	t.Run("configured default size", func(t *testing.T) {
		mockSearch := &mockSearchService{result: &domain.SearchResult{}}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)
		server.SetDefaultSize(25)
		server.SetDefaultSize(0)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 25, mockSearch.gotSize)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockSearch := &mockSearchService{err: errors.New("search failed")}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleSuggest(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to english", func(t *testing.T) {
		mockSearch := &mockSearchService{
			suggestions: []domain.Suggestion{{Text: "In the name of Allah"}},
		}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, output, err := server.handleSuggest(ctx, nil, SuggestInput{Prefix: "in th"})

		require.NoError(t, err)
		assert.Equal(t, []string{"In the name of Allah"}, output.Suggestions)
		assert.Equal(t, "text_english", mockSearch.gotField)
	})

	t.Run("passes invalid field error through", func(t *testing.T) {
		mockSearch := &mockSearchService{err: fmt.Errorf("%w: \"title\"", domain.ErrInvalidField)}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, _, err = server.handleSuggest(ctx, nil, SuggestInput{Prefix: "x", Field: "title"})

		assert.ErrorIs(t, err, domain.ErrInvalidField)
	})
}

func TestServer_handleRead(t *testing.T) {
	ctx := context.Background()
	mockSearch := &mockSearchService{
		page: &domain.VersePage{Verses: []domain.Verse{{ID: 3}, {ID: 4}}, Total: 2},
	}
	server, err := NewServer(&Ports{Search: mockSearch})
	require.NoError(t, err)

	_, output, err := server.handleRead(ctx, nil, ReadInput{StartID: 3, Count: 2})

	require.NoError(t, err)
	require.Len(t, output.Verses, 2)
	assert.Equal(t, int64(3), mockSearch.gotStart)
	assert.Equal(t, 2, mockSearch.gotCount)
}
