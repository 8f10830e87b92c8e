package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookClientSearch(t *testing.T) {
	t.Run("maps docs to candidates in order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/search.json", r.URL.Path)
			assert.Equal(t, "Mistborn", r.URL.Query().Get("q"))
			assert.Equal(t, "Brandon Sanderson", r.URL.Query().Get("author"))
			w.Write([]byte(`{"docs":[
				{"key":"/works/OL5738147W","title":"Mistborn: The Final Empire","author_name":["Brandon Sanderson"],"first_publish_year":2006,"cover_i":8884872,"series":["Mistborn"]},
				{"key":"/works/OL123W","title":"Mistborn Trilogy","author_name":["Brandon Sanderson"]}
			]}`))
		}))
		defer srv.Close()

		client := NewBookClient(srv.URL)
		client.pacer = NewPacer(0)

		candidates, err := client.Search(context.Background(), "Mistborn", "Brandon Sanderson")
		require.NoError(t, err)
		require.Len(t, candidates, 2)

		first := candidates[0]
		assert.Equal(t, "/works/OL5738147W", first.ExternalID)
		assert.Equal(t, "Mistborn: The Final Empire", first.Title)
		assert.Equal(t, []string{"Brandon Sanderson"}, first.AuthorNames)
		assert.Equal(t, 2006, first.FirstPublishYear)
		assert.Equal(t, "Mistborn", first.SeriesName)
		assert.Equal(t, "https://covers.openlibrary.org/b/id/8884872-L.jpg", first.CoverURL)
	})

	t.Run("empty docs returns an empty slice", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"docs":[]}`))
		}))
		defer srv.Close()

		client := NewBookClient(srv.URL)
		client.pacer = NewPacer(0)

		candidates, err := client.Search(context.Background(), "Nothing", "")
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("provider errors surface", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewBookClient(srv.URL)
		client.pacer = NewPacer(0)

		_, err := client.Search(context.Background(), "Anything", "")
		require.Error(t, err)
	})
}
