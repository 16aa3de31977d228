package waitlist

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func TestWebhookSink_Forward(t *testing.T) {
	payload := Payload{Timestamp: "2026-03-01T00:00:00.000Z", Email: "a@b.co", Role: "other", Country: Country, Source: Source}

	t.Run("success", func(t *testing.T) {
		var got Payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := NewWebhookSink(srv.URL).Forward(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("non 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		err := NewWebhookSink(srv.URL).Forward(context.Background(), payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		assert.Error(t, NewWebhookSink(url).Forward(context.Background(), payload))
	})
}

func TestSheetsSink_Forward(t *testing.T) {
	var (
		path string
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	sink := NewSheetsSinkWithService(svc, "sheet-1", "Waitlist!A:H")
	err = sink.Forward(ctx, Payload{Email: "a@b.co", Role: "other", Country: Country, Source: Source})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/v4/spreadsheets/sheet-1/values/"), path)
	assert.True(t, strings.HasSuffix(path, ":append"), path)
	assert.Contains(t, body, `"a@b.co"`)
	assert.Contains(t, body, `"waitlist_page"`)
}

func TestNewSink(t *testing.T) {
	ctx := context.Background()

	sink, err := NewSink(ctx, "", "", "", "")
	require.NoError(t, err)
	assert.Nil(t, sink)

	sink, err = NewSink(ctx, "http://example.com/hook", "", "", "")
	require.NoError(t, err)
	assert.IsType(t, &WebhookSink{}, sink)

	_, err = NewSink(ctx, "", "sheet-1", "A:H", "/does/not/exist.json")
	assert.Error(t, err)
}
