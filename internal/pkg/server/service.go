package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/amazingchow/ai-teacher/internal/pkg/fingerprint"
	"github.com/amazingchow/ai-teacher/internal/pkg/messages"
	"github.com/amazingchow/ai-teacher/internal/pkg/persistence"
	"github.com/amazingchow/ai-teacher/internal/pkg/status"
	"github.com/amazingchow/ai-teacher/internal/pkg/utils"

	"github.com/airenas/go-app/pkg/goapp"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// FileSaver provides save file functionality
type FileSaver interface {
	SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error
}

// MsgSender provides send msg functionality
type MsgSender interface {
	SendMessage(context.Context, amessages.Message, string) error
}

// DB keeps students, questions and recordings
type DB interface {
	InsertStudent(ctx context.Context, st *persistence.Student) (int64, error)
	ListStudents(ctx context.Context) ([]*persistence.Student, error)
	LoadStudentByStudentID(ctx context.Context, studentID string) (*persistence.Student, error)
	UpdateStudent(ctx context.Context, st *persistence.Student) error
	DeleteStudent(ctx context.Context, id int64) error

	InsertQuestion(ctx context.Context, q *persistence.Question) (int64, error)
	LoadQuestion(ctx context.Context, id int64) (*persistence.Question, error)
	ListQuestions(ctx context.Context, category string) ([]*persistence.Question, error)
	UpdateQuestion(ctx context.Context, q *persistence.Question) error
	DeleteQuestion(ctx context.Context, id int64) error

	InsertRecording(ctx context.Context, r *persistence.Recording) (int64, error)
	ListPendingByFingerprint(ctx context.Context, fingerprint string) ([]int64, error)
	Live(ctx context.Context) error
}

// Data keeps data required for service work
type Data struct {
	Port      int
	Saver     FileSaver
	DB        DB
	MsgSender MsgSender
}

const (
	prmFile      = "file"
	prmStudentID = "student_id"
	prmQuestion  = "question_id"
	prmDuration  = "duration"

	requestIDHeader = "x-request-id"
)

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("Starting HTTP teacher service at %d", data.Port)
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 180 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.Saver == nil {
		return errors.New("no file saver")
	}
	if data.DB == nil {
		return fmt.Errorf("no DB")
	}
	if data.MsgSender == nil {
		return fmt.Errorf("no msg sender")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("teacher_api", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.POST("/students", createStudent(data))
	e.GET("/students", listStudents(data))
	e.PUT("/students/:id", updateStudent(data))
	e.DELETE("/students/:id", deleteStudent(data))

	e.POST("/questions", createQuestion(data))
	e.GET("/questions", listQuestions(data))
	e.GET("/questions/:id", getQuestion(data))
	e.PUT("/questions/:id", updateQuestion(data))
	e.DELETE("/questions/:id", deleteQuestion(data))

	e.POST("/recordings", uploadRecording(data))
	e.POST("/recordings/batch-check", batchCheck(data))
	e.GET("/live", live(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		if utils.ParamTrue(c.QueryParam("full")) {
			if err := data.DB.Live(c.Request().Context()); err != nil {
				goapp.Log.Error().Err(err).Send()
				return echo.NewHTTPError(http.StatusServiceUnavailable)
			}
		}
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

type result struct {
	ID string `json:"id"`
}

type studentInput struct {
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Gender    string `json:"gender"`
	Age       int    `json:"age"`
	ClassName string `json:"class_name"`
}

type studentOutput struct {
	ID int64 `json:"id"`
	studentInput
}

func createStudent(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var in studentInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		if in.Name == "" || in.StudentID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "no name or student_id")
		}
		id, err := data.DB.InsertStudent(ctx, &persistence.Student{Name: in.Name, StudentID: in.StudentID,
			Gender: in.Gender, Age: in.Age, ClassName: in.ClassName})
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusCreated, studentOutput{ID: id, studentInput: in})
	}
}

func listStudents(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		sts, err := data.DB.ListStudents(c.Request().Context())
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		res := make([]studentOutput, 0, len(sts))
		for _, st := range sts {
			res = append(res, studentOutput{ID: st.ID, studentInput: studentInput{Name: st.Name,
				StudentID: st.StudentID, Gender: st.Gender, Age: st.Age, ClassName: st.ClassName}})
		}
		return c.JSON(http.StatusOK, res)
	}
}

func updateStudent(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, err := takeIDParam(c)
		if err != nil {
			return err
		}
		var in studentInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		err = data.DB.UpdateStudent(ctx, &persistence.Student{ID: id, Name: in.Name, StudentID: in.StudentID,
			Gender: in.Gender, Age: in.Age, ClassName: in.ClassName})
		if err != nil {
			return dbError(err)
		}
		return c.JSON(http.StatusOK, studentOutput{ID: id, studentInput: in})
	}
}

func deleteStudent(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id, err := takeIDParam(c)
		if err != nil {
			return err
		}
		if err := data.DB.DeleteStudent(c.Request().Context(), id); err != nil {
			return dbError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

type questionInput struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Answer   string `json:"answer"`
}

type questionOutput struct {
	ID int64 `json:"id"`
	questionInput
}

func createQuestion(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var in questionInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		if in.Title == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "no title")
		}
		id, err := data.DB.InsertQuestion(ctx, &persistence.Question{Category: in.Category, Title: in.Title,
			Content: in.Content, Answer: utils.ToSQLStr(in.Answer)})
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusCreated, questionOutput{ID: id, questionInput: in})
	}
}

func listQuestions(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		qs, err := data.DB.ListQuestions(c.Request().Context(), c.QueryParam("category"))
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		res := make([]questionOutput, 0, len(qs))
		for _, q := range qs {
			res = append(res, toQuestionOutput(q))
		}
		return c.JSON(http.StatusOK, res)
	}
}

func getQuestion(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id, err := takeIDParam(c)
		if err != nil {
			return err
		}
		q, err := data.DB.LoadQuestion(c.Request().Context(), id)
		if err != nil {
			return dbError(err)
		}
		return c.JSON(http.StatusOK, toQuestionOutput(q))
	}
}

func updateQuestion(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, err := takeIDParam(c)
		if err != nil {
			return err
		}
		var in questionInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		err = data.DB.UpdateQuestion(ctx, &persistence.Question{ID: id, Category: in.Category, Title: in.Title,
			Content: in.Content, Answer: utils.ToSQLStr(in.Answer)})
		if err != nil {
			return dbError(err)
		}
		return c.JSON(http.StatusOK, questionOutput{ID: id, questionInput: in})
	}
}

func deleteQuestion(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id, err := takeIDParam(c)
		if err != nil {
			return err
		}
		if err := data.DB.DeleteQuestion(c.Request().Context(), id); err != nil {
			return dbError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func toQuestionOutput(q *persistence.Question) questionOutput {
	return questionOutput{ID: q.ID, questionInput: questionInput{Category: q.Category, Title: q.Title,
		Content: q.Content, Answer: utils.FromSQLStr(q.Answer)}}
}

func uploadRecording(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("upload method")()
		ctx := c.Request().Context()

		form, err := c.MultipartForm()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "no multipart form data")
		}
		defer cleanFiles(form)

		file, handler, err := takeFile(form, prmFile)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "no file")
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(handler.Filename))
		if !utils.SupportAudioExt(ext) {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong file extension: "+ext)
		}

		qID, err := strconv.ParseInt(c.FormValue(prmQuestion), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong question_id")
		}
		duration, _ := strconv.ParseFloat(c.FormValue(prmDuration), 64)

		student, err := data.DB.LoadStudentByStudentID(ctx, c.FormValue(prmStudentID))
		if err != nil {
			return dbError(err)
		}
		question, err := data.DB.LoadQuestion(ctx, qID)
		if err != nil {
			return dbError(err)
		}

		now := time.Now()
		fileName := fmt.Sprintf("%d_%s_%s%s", question.ID, student.StudentID, now.Format("20060102150405"), ext)
		fn, err := utils.MakeValidateFileName("", fileName)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong file name: "+handler.Filename)
		}
		if err := data.Saver.SaveFile(ctx, fn, file, handler.Size); err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		id, err := data.DB.InsertRecording(ctx, &persistence.Recording{
			TaskFingerprint: fingerprint.Daily(question.ID, now),
			Filename:        fn,
			Duration:        duration,
			StudentRef:      student.StudentID,
			StudentName:     student.Name,
			QuestionRef:     question.ID,
			QuestionTitle:   question.Title,
			CheckResult:     status.NewPending().String(),
			Created:         now,
		})
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		res := result{ID: strconv.FormatInt(id, 10)}
		return c.JSON(http.StatusOK, res)
	}
}

type batchCheckInput struct {
	QuestionID int64 `json:"question_id"`
}

type batchCheckResult struct {
	Queued []string `json:"queued"`
}

// batchCheck enqueues all of today's unchecked recordings of one question
func batchCheck(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("batch check method")()
		ctx := c.Request().Context()
		var in batchCheckInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		if in.QuestionID <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "no question_id")
		}
		if _, err := data.DB.LoadQuestion(ctx, in.QuestionID); err != nil {
			return dbError(err)
		}
		fp := fingerprint.Daily(in.QuestionID, time.Now())
		ids, err := data.DB.ListPendingByFingerprint(ctx, fp)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		requestID := extractRequestID(c.Request().Header)
		goapp.Log.Info().Str("requestID", requestID).Int("count", len(ids)).Msg("queueing checks")

		res := batchCheckResult{Queued: []string{}}
		for _, id := range ids {
			idStr := strconv.FormatInt(id, 10)
			err := data.MsgSender.SendMessage(ctx, &messages.CheckMessage{
				QueueMessage: amessages.QueueMessage{ID: idStr}, RequestID: requestID}, messages.Check)
			if err != nil {
				goapp.Log.Error().Err(err).Send()
				return echo.NewHTTPError(http.StatusInternalServerError)
			}
			res.Queued = append(res.Queued, idStr)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func takeIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "wrong id")
	}
	return id, nil
}

func dbError(err error) error {
	if errors.Is(err, utils.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	goapp.Log.Error().Err(err).Send()
	return echo.NewHTTPError(http.StatusInternalServerError)
}

func extractRequestID(header http.Header) string {
	if id := header.Get(requestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

func cleanFiles(f *multipart.Form) {
	if f != nil {
		_ = f.RemoveAll()
	}
}

func takeFile(form *multipart.Form, paramName string) (multipart.File, *multipart.FileHeader, error) {
	handler := takeFirst(form.File[paramName], nil)
	if handler == nil {
		return nil, nil, http.ErrMissingFile
	}
	file, err := handler.Open()
	return file, handler, err
}

func takeFirst[K interface{}](a []K, d K) K {
	if len(a) > 0 {
		return a[0]
	}
	return d
}
