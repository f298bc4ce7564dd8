package epo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazakci/deeptech-startup-data/internal/config"
)

func TestAPIPageEntities(t *testing.T) {
	raw := `{"applicants": [{"unique_ID": "c-001", "name": "A", "role": "company"}], "nextPageToken": "tok-2", "totalNrOfRows": 10}`
	var page apiPage
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	require.Len(t, page.entities(), 1)
	assert.Equal(t, "c-001", page.entities()[0].UniqueID)
	assert.Equal(t, "tok-2", page.NextPageToken)

	// Older responses used a "content" key.
	raw = `{"content": [{"unique_ID": "c-002", "name": "B", "role": "company"}]}`
	page = apiPage{}
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	require.Len(t, page.entities(), 1)
	assert.Equal(t, "c-002", page.entities()[0].UniqueID)
}

func TestRunDirectPaginates(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body struct {
			NextPageToken string `json:"nextPageToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		switch body.NextPageToken {
		case "":
			w.Write([]byte(`{"applicants": [{"unique_ID": "c-001", "name": "A", "role": "company"}], "nextPageToken": "page-2"}`))
		case "page-2":
			w.Write([]byte(`{"applicants": [{"unique_ID": "c-002", "name": "B", "role": "company"}], "nextPageToken": ""}`))
		default:
			t.Fatalf("unexpected token %q", body.NextPageToken)
		}
	}))
	defer srv.Close()

	ex := New(config.ExtractConfig{APIURL: srv.URL, PageDelayMs: 1})
	entities, err := ex.runDirect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, entities, 2)
	assert.Equal(t, "c-001", entities[0].UniqueID)
	assert.Equal(t, "c-002", entities[1].UniqueID)
}

func TestRunDirectRejectedByProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<html>Just a moment...</html>", http.StatusForbidden)
	}))
	defer srv.Close()

	ex := New(config.ExtractConfig{APIURL: srv.URL})
	_, err := ex.runDirect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestRunDirectEmptyDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"applicants": []}`))
	}))
	defer srv.Close()

	ex := New(config.ExtractConfig{APIURL: srv.URL})
	_, err := ex.runDirect(context.Background())
	require.Error(t, err)
}

func TestHumanDelay(t *testing.T) {
	for i := 0; i < 20; i++ {
		d := humanDelay(time.Second, 2*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 2*time.Second)
	}
	assert.Equal(t, time.Second, humanDelay(time.Second, time.Second))
}
