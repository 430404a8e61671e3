//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type config struct {
	apiURL     string
	statusURL  string
	dbURL      string
	httpclient *http.Client
}

var cfg config

func TestMain(m *testing.M) {
	cfg.apiURL = GetEnvOrFail("API_URL")
	cfg.statusURL = GetEnvOrFail("STATUS_URL")
	cfg.dbURL = GetEnvOrFail("DB_URL")
	cfg.httpclient = &http.Client{Timeout: time.Second * 30}

	tCtx, cf := context.WithTimeout(context.Background(), time.Second*20)
	defer cf()
	WaitForOpenOrFail(tCtx, cfg.dbURL)
	WaitForOpenOrFail(tCtx, cfg.apiURL)
	WaitForOpenOrFail(tCtx, cfg.statusURL)
	waitForDB(tCtx, cfg.dbURL)

	// whisper-server mock - the real one is not in this docker compose
	l, ts := startMockTranscriber(9876)
	defer ts.Close()
	defer l.Close()

	os.Exit(m.Run())
}

func TestAPILive(t *testing.T) {
	t.Parallel()
	CheckCode(t, Invoke(t, cfg.httpclient, NewRequest(t, http.MethodGet, cfg.apiURL, "/live", nil)), http.StatusOK)
}

func TestStatusLive(t *testing.T) {
	t.Parallel()
	CheckCode(t, Invoke(t, cfg.httpclient, NewRequest(t, http.MethodGet, cfg.statusURL, "/live", nil)), http.StatusOK)
}

type idResponse struct {
	ID string `json:"id"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Score  int32  `json:"score"`
	Error  string `json:"error"`
}

func TestStatus_None(t *testing.T) {
	t.Parallel()
	st := getStatus(t, "999999")
	assert.Equal(t, "NOT_FOUND", st.Status)
}

func TestCheckFlow(t *testing.T) {
	student := createStudent(t, "integration-student")
	question := createQuestion(t, "你好")

	rID := uploadRecording(t, student, question)
	st := getStatus(t, rID)
	assert.Equal(t, "pending", st.Status)

	resp := Invoke(t, cfg.httpclient, NewRequest(t, http.MethodPost, cfg.apiURL, "/recordings/batch-check",
		map[string]interface{}{"question_id": question}))
	CheckCode(t, resp, http.StatusOK)

	dur := time.Second * 20
	tm := time.After(dur)
	for {
		select {
		case <-tm:
			require.Failf(t, "Fail", "Not checked in %v", dur)
		default:
			st = getStatus(t, rID)
			if st.Status == "checked" {
				assert.Equal(t, int32(100), st.Score)
				return
			}
			time.Sleep(time.Second)
		}
	}
}

func createStudent(t *testing.T, id string) string {
	t.Helper()
	resp := Invoke(t, cfg.httpclient, NewRequest(t, http.MethodPost, cfg.apiURL, "/students",
		map[string]interface{}{"name": "olia", "student_id": id}))
	CheckCode(t, resp, http.StatusCreated)
	return id
}

func createQuestion(t *testing.T, answer string) int64 {
	t.Helper()
	resp := Invoke(t, cfg.httpclient, NewRequest(t, http.MethodPost, cfg.apiURL, "/questions",
		map[string]interface{}{"title": "olia", "answer": answer}))
	CheckCode(t, resp, http.StatusCreated)
	var res createdResponse
	Decode(t, resp, &res)
	require.Greater(t, res.ID, int64(0))
	return res.ID
}

func uploadRecording(t *testing.T, studentID string, questionID int64) string {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "audio.wav")
	_, _ = io.Copy(part, strings.NewReader("fake audio"))
	_ = writer.WriteField("student_id", studentID)
	_ = writer.WriteField("question_id", fmt.Sprintf("%d", questionID))
	_ = writer.Close()
	req, err := http.NewRequest(http.MethodPost, cfg.apiURL+"/recordings", body)
	require.Nil(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := Invoke(t, cfg.httpclient, req)
	CheckCode(t, resp, http.StatusOK)
	var res idResponse
	Decode(t, resp, &res)
	require.NotEmpty(t, res.ID)
	return res.ID
}

func getStatus(t *testing.T, id string) statusResponse {
	t.Helper()
	resp := Invoke(t, cfg.httpclient, NewRequest(t, http.MethodGet, cfg.statusURL, "status/"+id, nil))
	CheckCode(t, resp, http.StatusOK)
	var st statusResponse
	Decode(t, resp, &st)
	return st
}

func startMockTranscriber(port int) (net.Listener, *httptest.Server) {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		log.Fatalf("can't start mock service: %v", err)
	}
	ts := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inference":
			_, _ = io.Copy(w, strings.NewReader(`{"text":"你好"}`))
		default:
			log.Printf("Unknown request to: " + r.URL.String())
		}
	}))

	ts.Listener.Close()
	ts.Listener = l

	ts.Start()
	log.Printf("started mock srv on port: %d", port)
	return l, ts
}
