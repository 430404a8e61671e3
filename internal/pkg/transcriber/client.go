package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	tapi "github.com/amazingchow/ai-teacher/internal/pkg/transcriber/api"
	"github.com/cenkalti/backoff/v4"
)

// Client communicates with a whisper-server instance.
// The model is loaded by the server once, the client is a cheap shared handle
type Client struct {
	httpclient   *http.Client
	inferenceURL string
	timeout      time.Duration
	backoff      func() backoff.BackOff
}

type inferenceResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// NewClient creates a transcriber client
func NewClient(url string) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("no transcriber URL")
	}
	res := Client{}
	res.inferenceURL = url
	res.timeout = time.Minute * 10
	res.httpclient = asrHTTPClient()
	res.backoff = newSimpleBackoff
	return &res, nil
}

// Transcribe sends the audio artifact and returns the recognized text.
// Transport failures are retried with backoff, a final failure is wrapped
// into api.TranscriptionError
func (sp *Client) Transcribe(ctx context.Context, filePath, language string) (string, error) {
	res, err := goapp.InvokeWithBackoff(ctx, func() (string, bool, error) {
		return sp.invoke(ctx, filePath, language)
	}, sp.backoff())
	if err != nil {
		return "", tapi.NewTranscriptionError(err)
	}
	return res, nil
}

func (sp *Client) invoke(ctx context.Context, filePath, language string) (string, bool, error) {
	ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
	defer cancelF()

	body, contentType, err := prepareBody(filePath, language)
	if err != nil {
		return "", false, err
	}
	req, err := http.NewRequest(http.MethodPost, sp.inferenceURL, body)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(ctx)

	goapp.Log.Debug().Str("url", req.URL.String()).Msg("transcribe")
	resp, err := sp.httpclient.Do(req)
	if err != nil {
		return "", goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
		_ = resp.Body.Close()
	}()
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		err = fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
		return "", goapp.IsRetryableCode(resp.StatusCode), err
	}
	var res inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", false, fmt.Errorf("can't unmarshal: %w", err)
	}
	if res.Error != "" {
		return "", false, fmt.Errorf("transcriber error: %s", res.Error)
	}
	return res.Text, false, nil
}

func prepareBody(filePath, language string) (io.Reader, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("can't open '%s': %w", filePath, err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, "", fmt.Errorf("can't prepare multipart: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("can't read '%s': %w", filePath, err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return nil, "", fmt.Errorf("can't prepare multipart: %w", err)
		}
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return nil, "", fmt.Errorf("can't prepare multipart: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("can't prepare multipart: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

func newSimpleBackoff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
}

func asrHTTPClient() *http.Client {
	return &http.Client{Transport: newTransport()}
}

func newTransport() http.RoundTripper {
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxConnsPerHost = 50
	res.MaxIdleConns = 10
	res.IdleConnTimeout = time.Second * 90
	res.DialContext = (&net.Dialer{Timeout: time.Second * 10}).DialContext
	return res
}
