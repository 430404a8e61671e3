package mocks

import (
	"context"
	"database/sql"
	"io"

	"github.com/airenas/async-api/pkg/messages"
	"github.com/amazingchow/ai-teacher/internal/pkg/persistence"
	"github.com/amazingchow/ai-teacher/internal/pkg/transcriber/api"
	"github.com/stretchr/testify/mock"
)

// Filer is audio artifact store mock
type Filer struct{ mock.Mock }

func (m *Filer) SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error {
	args := m.Called(ctx, name, r, fileSize)
	return args.Error(0)
}

func (m *Filer) Path(name string) string {
	args := m.Called(name)
	return args.String(0)
}

func (m *Filer) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// DB is postgres DB mock
type DB struct{ mock.Mock }

func (m *DB) InsertStudent(ctx context.Context, st *persistence.Student) (int64, error) {
	args := m.Called(ctx, st)
	return int64(args.Int(0)), args.Error(1)
}

func (m *DB) LoadStudentByStudentID(ctx context.Context, studentID string) (*persistence.Student, error) {
	args := m.Called(ctx, studentID)
	return to[*persistence.Student](args.Get(0)), args.Error(1)
}

func (m *DB) ListStudents(ctx context.Context) ([]*persistence.Student, error) {
	args := m.Called(ctx)
	return to[[]*persistence.Student](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateStudent(ctx context.Context, st *persistence.Student) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *DB) DeleteStudent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) InsertQuestion(ctx context.Context, q *persistence.Question) (int64, error) {
	args := m.Called(ctx, q)
	return int64(args.Int(0)), args.Error(1)
}

func (m *DB) LoadQuestion(ctx context.Context, id int64) (*persistence.Question, error) {
	args := m.Called(ctx, id)
	return to[*persistence.Question](args.Get(0)), args.Error(1)
}

func (m *DB) ListQuestions(ctx context.Context, category string) ([]*persistence.Question, error) {
	args := m.Called(ctx, category)
	return to[[]*persistence.Question](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateQuestion(ctx context.Context, q *persistence.Question) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *DB) DeleteQuestion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) InsertRecording(ctx context.Context, r *persistence.Recording) (int64, error) {
	args := m.Called(ctx, r)
	return int64(args.Int(0)), args.Error(1)
}

func (m *DB) LoadRecording(ctx context.Context, id int64) (*persistence.Recording, error) {
	args := m.Called(ctx, id)
	return to[*persistence.Recording](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateCheckResult(ctx context.Context, id int64, result string, score sql.NullInt32) error {
	args := m.Called(ctx, id, result, score)
	return args.Error(0)
}

func (m *DB) ListPendingByFingerprint(ctx context.Context, fingerprint string) ([]int64, error) {
	args := m.Called(ctx, fingerprint)
	return to[[]int64](args.Get(0)), args.Error(1)
}

func (m *DB) LockEmailTable(ctx context.Context, id string, msgType string) error {
	args := m.Called(ctx, id, msgType)
	return args.Error(0)
}

func (m *DB) UnLockEmailTable(ctx context.Context, id string, msgType string, value *int) error {
	args := m.Called(ctx, id, msgType, value)
	return args.Error(0)
}

func (m *DB) Live(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Sender is postgres queue mock
type Sender struct{ mock.Mock }

func (m *Sender) SendMessage(ctx context.Context, msg messages.Message, queue string) error {
	args := m.Called(ctx, msg, queue)
	return args.Error(0)
}

// Transcriber is transcription client mock
type Transcriber struct{ mock.Mock }

func (m *Transcriber) Transcribe(ctx context.Context, filePath, language string) (string, error) {
	args := m.Called(ctx, filePath, language)
	return args.String(0), args.Error(1)
}

// TranscriberProvider is transcriber selection mock
type TranscriberProvider struct{ mock.Mock }

func (m *TranscriberProvider) Get(srv string, allowNew bool) (api.Transcriber, string, error) {
	args := m.Called(srv, allowNew)
	return to[api.Transcriber](args.Get(0)), args.String(1), args.Error(2)
}

func to[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}
