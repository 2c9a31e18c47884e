package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake audio bytes"), 0o644))
	return path
}

func TestTranscribe_Success(t *testing.T) {
	var gotAuth, gotFilename, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFormat = r.FormValue("response_format")
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		gotFilename = header.Filename

		_ = json.NewEncoder(w).Encode(Result{
			Text: "hello coach",
			Segments: []Segment{
				{Start: 0, End: 1.5, Text: "hello"},
				{Start: 1.5, End: 3, Text: "coach"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	result, err := client.Transcribe(context.Background(), writeAudioFixture(t), "session.mp3")

	require.NoError(t, err)
	assert.Equal(t, "hello coach", result.Text)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, 1.5, result.Segments[1].Start)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "session.mp3", gotFilename)
	assert.Equal(t, "verbose_json", gotFormat)
}

func TestTranscribe_NoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(Result{Text: "ok"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Transcribe(context.Background(), writeAudioFixture(t), "")
	require.NoError(t, err)
}

func TestTranscribe_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(Result{Text: "recovered"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	result, err := client.Transcribe(context.Background(), writeAudioFixture(t), "")

	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTranscribe_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unsupported format", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Transcribe(context.Background(), writeAudioFixture(t), "")

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTranscribe_MissingFile(t *testing.T) {
	client := NewClient("http://localhost:1", "")
	_, err := client.Transcribe(context.Background(), "/nonexistent/audio.mp3", "")
	require.Error(t, err)
}

func TestAPIError_Temporary(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: http.StatusTooManyRequests}).Temporary())
	assert.True(t, (&APIError{StatusCode: http.StatusInternalServerError}).Temporary())
	assert.True(t, (&APIError{StatusCode: http.StatusBadGateway}).Temporary())
	assert.False(t, (&APIError{StatusCode: http.StatusBadRequest}).Temporary())
	assert.False(t, (&APIError{StatusCode: http.StatusUnauthorized}).Temporary())
}
