package inform

import (
	"fmt"
	"testing"
	"time"

	"github.com/airenas/async-api/pkg/inform"
	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/amazingchow/ai-teacher/internal/pkg/test"
	"github.com/amazingchow/ai-teacher/internal/pkg/test/mocks"
	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"
)

var (
	dbMock     *mocks.DB
	makerMock  *mockEmailMaker
	senderMock *mockEmailSender
	srvData    *ServiceData
)

func initTest(t *testing.T) {
	dbMock = &mocks.DB{}
	makerMock = &mockEmailMaker{}
	senderMock = &mockEmailSender{}
	srvData = &ServiceData{DB: dbMock, GueClient: &gue.Client{}, WorkerCount: 10,
		EmailMaker: makerMock, EmailSender: senderMock, InstructorEmail: "teacher@school.lt"}
	dbMock.On("LockEmailTable", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dbMock.On("UnLockEmailTable", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	makerMock.On("Make", mock.Anything).Return(&email.Email{}, nil)
	senderMock.On("Send", mock.Anything).Return(nil)
}

func Test_handleInform(t *testing.T) {
	initTest(t)
	err := handleInform(test.Ctx(t), &amessages.InformMessage{QueueMessage: amessages.QueueMessage{ID: "1"},
		Type: amessages.InformTypeFinished, At: time.Now()}, srvData)
	assert.Nil(t, err)
	require.Equal(t, 1, len(senderMock.Calls))
	require.Equal(t, 2, len(dbMock.Calls))
	unlock := dbMock.Calls[1]
	require.Equal(t, "UnLockEmailTable", unlock.Method)
	assert.Equal(t, 2, *unlock.Arguments[3].(*int))
	mailData := makerMock.Calls[0].Arguments[0].(*inform.Data)
	assert.Equal(t, "teacher@school.lt", mailData.Email)
	assert.Equal(t, "1", mailData.ID)
}

func Test_handleInform_NoEmail_Skips(t *testing.T) {
	initTest(t)
	srvData.InstructorEmail = ""
	err := handleInform(test.Ctx(t), &amessages.InformMessage{QueueMessage: amessages.QueueMessage{ID: "1"},
		Type: amessages.InformTypeFinished, At: time.Now()}, srvData)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(senderMock.Calls))
	assert.Equal(t, 0, len(dbMock.Calls))
}

func Test_handleInform_LockFails(t *testing.T) {
	initTest(t)
	dbMock.ExpectedCalls = nil
	dbMock.On("LockEmailTable", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("olia err"))
	err := handleInform(test.Ctx(t), &amessages.InformMessage{QueueMessage: amessages.QueueMessage{ID: "1"},
		Type: amessages.InformTypeFinished, At: time.Now()}, srvData)
	assert.NotNil(t, err)
	assert.Equal(t, 0, len(senderMock.Calls))
}

func Test_handleInform_SendFails_Unlocks(t *testing.T) {
	initTest(t)
	senderMock.ExpectedCalls = nil
	senderMock.On("Send", mock.Anything).Return(fmt.Errorf("olia err"))
	err := handleInform(test.Ctx(t), &amessages.InformMessage{QueueMessage: amessages.QueueMessage{ID: "1"},
		Type: amessages.InformTypeFinished, At: time.Now()}, srvData)
	assert.NotNil(t, err)
	unlock := dbMock.Calls[1]
	require.Equal(t, "UnLockEmailTable", unlock.Method)
	assert.Equal(t, 0, *unlock.Arguments[3].(*int))
}

func Test_toLocalTime(t *testing.T) {
	initTest(t)
	at := time.Date(2023, 5, 2, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, at, toLocalTime(srvData, at))
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.Nil(t, err)
	srvData.Location = loc
	assert.Equal(t, at.In(loc), toLocalTime(srvData, at))
}

func Test_validate(t *testing.T) {
	initTest(t)
	assert.Nil(t, validate(srvData))
	srvData.DB = nil
	assert.NotNil(t, validate(srvData))
	initTest(t)
	srvData.GueClient = nil
	assert.NotNil(t, validate(srvData))
	initTest(t)
	srvData.WorkerCount = 0
	assert.NotNil(t, validate(srvData))
	initTest(t)
	srvData.EmailMaker = nil
	assert.NotNil(t, validate(srvData))
	initTest(t)
	srvData.EmailSender = nil
	assert.NotNil(t, validate(srvData))
}

type mockEmailMaker struct{ mock.Mock }

func (m *mockEmailMaker) Make(data *inform.Data) (*email.Email, error) {
	args := m.Called(data)
	return args.Get(0).(*email.Email), args.Error(1)
}

type mockEmailSender struct{ mock.Mock }

func (m *mockEmailSender) Send(e *email.Email) error {
	args := m.Called(e)
	return args.Error(0)
}
