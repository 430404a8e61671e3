package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/amazingchow/ai-teacher/internal/pkg/messages"
	"github.com/amazingchow/ai-teacher/internal/pkg/persistence"
	"github.com/amazingchow/ai-teacher/internal/pkg/similarity"
	"github.com/amazingchow/ai-teacher/internal/pkg/status"
	"github.com/amazingchow/ai-teacher/internal/pkg/textnorm"
	tapi "github.com/amazingchow/ai-teacher/internal/pkg/transcriber/api"
	"github.com/amazingchow/ai-teacher/internal/pkg/utils"
	"github.com/amazingchow/ai-teacher/internal/pkg/utils/handler"
	"github.com/vgarvardt/gue/v5"
)

// MsgSender provides send msg functionality
type MsgSender interface {
	SendMessage(context.Context, amessages.Message, string) error
}

// DB provides persistence functionality
type DB interface {
	LoadRecording(ctx context.Context, id int64) (*persistence.Recording, error)
	LoadQuestion(ctx context.Context, id int64) (*persistence.Question, error)
	UpdateCheckResult(ctx context.Context, id int64, result string, score sql.NullInt32) error
}

// Filer locates and removes audio artifacts
type Filer interface {
	Path(name string) string
	Delete(ctx context.Context, name string) error
}

// TranscriberProvider returns a transcriber instance for a job
type TranscriberProvider interface {
	Get(srv string, allowNew bool) (tapi.Transcriber, string, error)
}

// ServiceData keeps data required for service work
type ServiceData struct {
	GueClient    *gue.Client
	WorkerCount  int
	MsgSender    MsgSender
	DB           DB
	Filer        Filer
	Transcribers TranscriberProvider
	Language     string
	Testing      bool
}

const (
	// the transcription step dominates the job, limits follow the
	// whisper inference worst case on long recordings
	softJobLimit = time.Minute * 18
	hardJobLimit = time.Minute * 20
)

// StartWorkerService starts the event queue listener service to listen for check events
// returns channel for tracking if all jobs are finished
func StartWorkerService(ctx context.Context, data *ServiceData) (chan struct{}, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	goapp.Log.Info().Int("workers", data.WorkerCount).Msg("Starting listen for messages")
	if data.Testing {
		goapp.Log.Warn().Msg("SERVICE IN TEST MODE")
	}

	wm := gue.WorkMap{
		messages.Check: handler.Create(data, handleCheck, handler.DefaultOpts[messages.CheckMessage]().
			WithTimeout(hardJobLimit).WithSoftTimeout(softJobLimit).
			WithBackoff(handler.DefaultBackoffOrTest(data.Testing))),
	}

	pool, err := gue.NewWorkerPool(
		data.GueClient, wm, data.WorkerCount,
		gue.WithPoolQueue(messages.Check),
		gue.WithPoolLogger(utils.NewGueLoggerAdapter()),
		gue.WithPoolPollInterval(500*time.Millisecond),
		gue.WithPoolPollStrategy(gue.RunAtPollStrategy),
		gue.WithPoolID("check-worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not build gue workers pool: %w", err)
	}
	res := make(chan struct{}, 1)
	go func() {
		goapp.Log.Info().Msg("Starting workers")
		if err := pool.Run(ctx); err != nil {
			goapp.Log.Error().Err(err).Msg("pool error")
		}
		goapp.Log.Info().Msg("Pool workers finished")
		res <- struct{}{}
	}()
	return res, nil
}

func handleCheck(ctx context.Context, m *messages.CheckMessage, data *ServiceData) error {
	goapp.Log.Info().Str("ID", m.ID).Msg("handling check")
	defer goapp.Estimate("check " + m.ID)()

	id, err := strconv.ParseInt(m.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("wrong recording id '%s': %w", m.ID, err)
	}
	if err := data.MsgSender.SendMessage(ctx, &amessages.InformMessage{
		QueueMessage: *amessages.NewQueueMessageFromM(&m.QueueMessage),
		Type:         amessages.InformTypeStarted, At: time.Now()}, messages.Inform); err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}

	rec, err := data.DB.LoadRecording(ctx, id)
	if err != nil {
		return fmt.Errorf("can't load recording: %w", err)
	}
	if status.Parse(rec.CheckResult).Terminal() {
		goapp.Log.Info().Str("ID", m.ID).Msg("already checked, skip")
		return nil
	}
	q, err := data.DB.LoadQuestion(ctx, rec.QuestionRef)
	if err != nil {
		return fmt.Errorf("can't load question: %w", err)
	}

	path := data.Filer.Path(rec.Filename)
	if !utils.FileExists(path) {
		return fmt.Errorf("artifact '%s': %w", rec.Filename, utils.ErrArtifactMissing)
	}

	transcriber, srv, err := data.Transcribers.Get(m.RequestID, true)
	if err != nil {
		return fmt.Errorf("can't get transcriber: %w", err)
	}
	goapp.Log.Debug().Str("ID", m.ID).Str("srv", srv).Msg("transcribing")
	text, err := transcriber.Transcribe(ctx, path, data.Language)
	if err != nil {
		var trErr *tapi.TranscriptionError
		if errors.As(err, &trErr) {
			return saveFailure(ctx, m, id, trErr, data)
		}
		return fmt.Errorf("can't transcribe: %w", err)
	}

	reference := textnorm.Normalize(q.Content)
	hypothesis := textnorm.Normalize(text)
	sim := similarity.Ratio(reference, hypothesis)
	score := similarity.Score(sim)

	if err := data.DB.UpdateCheckResult(ctx, id, status.NewChecked().String(),
		utils.ToSQLInt32(int32(score))); err != nil {
		return fmt.Errorf("can't save check result: %w", err)
	}
	// db is the source of truth now, artifact removal failure is not fatal
	if err := data.Filer.Delete(ctx, rec.Filename); err != nil {
		goapp.Log.Warn().Err(err).Str("ID", m.ID).Str("file", rec.Filename).Msg("can't delete artifact")
	}
	if err := sendFinish(ctx, m, data); err != nil {
		return err
	}
	goapp.Log.Info().Str("ID", m.ID).Int("score", score).Float64("similarity", sim).Msg("checked")
	return nil
}

// saveFailure persists a handled transcription failure with zero score.
// The artifact stays for later inspection, the job does not retry
func saveFailure(ctx context.Context, m *messages.CheckMessage, id int64, trErr *tapi.TranscriptionError, data *ServiceData) error {
	goapp.Log.Warn().Err(trErr).Str("ID", m.ID).Msg("transcription failed")
	if err := data.DB.UpdateCheckResult(ctx, id, status.NewFailed(trErr.Error()).String(),
		utils.ToSQLInt32(0)); err != nil {
		return fmt.Errorf("can't save check result: %w", err)
	}
	if err := data.MsgSender.SendMessage(ctx, messages.NewMessageFrom(m), messages.StatusChange); err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	if err := data.MsgSender.SendMessage(ctx, &amessages.InformMessage{
		QueueMessage: *amessages.NewQueueMessageFromM(&m.QueueMessage),
		Type:         amessages.InformTypeFailed, At: time.Now()}, messages.Inform); err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	return nil
}

func sendFinish(ctx context.Context, m *messages.CheckMessage, data *ServiceData) error {
	if err := data.MsgSender.SendMessage(ctx, messages.NewMessageFrom(m), messages.StatusChange); err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	if err := data.MsgSender.SendMessage(ctx, &amessages.InformMessage{
		QueueMessage: *amessages.NewQueueMessageFromM(&m.QueueMessage),
		Type:         amessages.InformTypeFinished, At: time.Now()}, messages.Inform); err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	return nil
}

func validate(data *ServiceData) error {
	if data.GueClient == nil {
		return fmt.Errorf("no gue client")
	}
	if data.WorkerCount < 1 {
		return fmt.Errorf("no worker count provided")
	}
	if data.MsgSender == nil {
		return fmt.Errorf("no msg sender")
	}
	if data.DB == nil {
		return fmt.Errorf("no db")
	}
	if data.Filer == nil {
		return fmt.Errorf("no filer")
	}
	if data.Transcribers == nil {
		return fmt.Errorf("no transcriber provider")
	}
	return nil
}
