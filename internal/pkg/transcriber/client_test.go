package transcriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	tapi "github.com/amazingchow/ai-teacher/internal/pkg/transcriber/api"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestServer(t *testing.T, code int, resp string) (*Client, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		calls++
		require.Nil(t, req.ParseMultipartForm(1024*1024))
		rw.WriteHeader(code)
		_, _ = rw.Write([]byte(resp))
	}))
	t.Cleanup(func() { server.Close() })
	api := Client{}
	api.httpclient = server.Client()
	api.inferenceURL = server.URL
	api.timeout = time.Second * 5
	api.backoff = func() backoff.BackOff {
		return &backoff.StopBackOff{}
	}
	return &api, &calls
}

func testAudioFile(t *testing.T) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "1_s1_2025-03-23.wav")
	require.Nil(t, os.WriteFile(fp, []byte("audio data"), 0600))
	return fp
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:8000/inference")
	assert.Nil(t, err)
	assert.NotNil(t, c)
}

func TestNewClient_Fail(t *testing.T) {
	_, err := NewClient("")
	assert.NotNil(t, err)
}

func TestTranscribe(t *testing.T) {
	c, calls := initTestServer(t, http.StatusOK, `{"text":" 你好，世界。"}`)
	res, err := c.Transcribe(context.Background(), testAudioFile(t), "zh")
	require.Nil(t, err)
	assert.Equal(t, " 你好，世界。", res)
	assert.Equal(t, 1, *calls)
}

func TestTranscribe_FailCode(t *testing.T) {
	c, _ := initTestServer(t, http.StatusInternalServerError, "")
	_, err := c.Transcribe(context.Background(), testAudioFile(t), "zh")
	require.NotNil(t, err)
	var tErr *tapi.TranscriptionError
	assert.True(t, errors.As(err, &tErr))
}

func TestTranscribe_FailResponse(t *testing.T) {
	c, _ := initTestServer(t, http.StatusOK, `{"error":"no audio"}`)
	_, err := c.Transcribe(context.Background(), testAudioFile(t), "zh")
	require.NotNil(t, err)
	var tErr *tapi.TranscriptionError
	assert.True(t, errors.As(err, &tErr))
}

func TestTranscribe_FailNoFile(t *testing.T) {
	c, calls := initTestServer(t, http.StatusOK, `{"text":"olia"}`)
	_, err := c.Transcribe(context.Background(), "/no/such/file.wav", "zh")
	require.NotNil(t, err)
	assert.Equal(t, 0, *calls)
}
