package statusservice

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amazingchow/ai-teacher/internal/pkg/persistence"
	"github.com/amazingchow/ai-teacher/internal/pkg/test"
	"github.com/amazingchow/ai-teacher/internal/pkg/test/mocks"
	"github.com/amazingchow/ai-teacher/internal/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	dbMock    *mocks.DB
	wsMock    *mockWSConnHandler
	tData     *Data
	tEcho     *echo.Echo
)

func initTest(t *testing.T) {
	dbMock = &mocks.DB{}
	wsMock = &mockWSConnHandler{}
	tData = &Data{DB: dbMock, WSHandler: wsMock}
	tEcho = initRoutes(tData)
}

func TestLive(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	test.Code(t, tEcho, req, http.StatusOK)
}

func TestStatus_Pending(t *testing.T) {
	initTest(t)
	dbMock.On("LoadRecording", mock.Anything, mock.Anything).Return(
		&persistence.Recording{ID: 1, CheckResult: "pending", StudentName: "王小明", QuestionTitle: "静夜思"}, nil)
	req := httptest.NewRequest(http.MethodGet, "/status/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[result](t, resp.Result())
	assert.Equal(t, result{ID: "1", Status: "pending", Student: "王小明", Question: "静夜思"}, res)
}

func TestStatus_Checked(t *testing.T) {
	initTest(t)
	dbMock.On("LoadRecording", mock.Anything, mock.Anything).Return(
		&persistence.Recording{ID: 1, CheckResult: "checked", Score: utils.ToSQLInt32(90)}, nil)
	req := httptest.NewRequest(http.MethodGet, "/status/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[result](t, resp.Result())
	assert.Equal(t, "checked", res.Status)
	assert.Equal(t, int32(90), res.Score)
}

func TestStatus_Failed(t *testing.T) {
	initTest(t)
	dbMock.On("LoadRecording", mock.Anything, mock.Anything).Return(
		&persistence.Recording{ID: 1, CheckResult: "Transcription failed: olia"}, nil)
	req := httptest.NewRequest(http.MethodGet, "/status/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[result](t, resp.Result())
	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, "Transcription failed: olia", res.Error)
	assert.Equal(t, int32(0), res.Score)
}

func TestStatus_NotFound(t *testing.T) {
	initTest(t)
	dbMock.On("LoadRecording", mock.Anything, mock.Anything).Return(nil, utils.ErrNotFound)
	req := httptest.NewRequest(http.MethodGet, "/status/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[result](t, resp.Result())
	assert.Equal(t, "NOT_FOUND", res.Status)
}

func TestStatus_WrongID(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/status/olia", nil)
	test.Code(t, tEcho, req, http.StatusBadRequest)
}

func TestStatus_DBFails(t *testing.T) {
	initTest(t)
	dbMock.On("LoadRecording", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia err"))
	req := httptest.NewRequest(http.MethodGet, "/status/1", nil)
	test.Code(t, tEcho, req, http.StatusInternalServerError)
}

func Test_validate(t *testing.T) {
	initTest(t)
	assert.Nil(t, validate(tData))
	tData.DB = nil
	assert.NotNil(t, validate(tData))
	initTest(t)
	tData.WSHandler = nil
	assert.NotNil(t, validate(tData))
}

type mockWSConnHandler struct{ mock.Mock }

func (m *mockWSConnHandler) HandleConnection(conn WsConn) error {
	args := m.Called(conn)
	return args.Error(0)
}

func (m *mockWSConnHandler) GetConnections(id string) ([]WsConn, bool) {
	args := m.Called(id)
	return args.Get(0).([]WsConn), args.Bool(1)
}
