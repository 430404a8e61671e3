package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amazingchow/ai-teacher/internal/pkg/persistence"
	"github.com/amazingchow/ai-teacher/internal/pkg/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB provides operations with postgresql
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates DB instance
func NewDB(pool *pgxpool.Pool) (*DB, error) {
	res := &DB{pool: pool}
	return res, nil
}

// InsertStudent inserts student into DB, returns the new internal id
func (db *DB) InsertStudent(ctx context.Context, st *persistence.Student) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx, `INSERT INTO students(name, student_id, gender, age, class_name)
	VALUES($1, $2, $3, $4, $5) RETURNING id`, st.Name, st.StudentID, st.Gender, st.Age, st.ClassName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("can't insert student: %w", err)
	}
	return id, nil
}

// LoadStudentByStudentID loads student by the school assigned number
func (db *DB) LoadStudentByStudentID(ctx context.Context, studentID string) (*persistence.Student, error) {
	var res persistence.Student
	err := db.pool.QueryRow(ctx, `SELECT id, name, student_id, gender, age, class_name FROM students
		WHERE student_id = $1`, studentID).Scan(&res.ID, &res.Name, &res.StudentID, &res.Gender, &res.Age, &res.ClassName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("can't load student: %w", err)
	}
	return &res, nil
}

// ListStudents loads all students
func (db *DB) ListStudents(ctx context.Context) ([]*persistence.Student, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, name, student_id, gender, age, class_name FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("can't select students: %w", err)
	}
	defer rows.Close()
	res := []*persistence.Student{}
	for rows.Next() {
		var st persistence.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.StudentID, &st.Gender, &st.Age, &st.ClassName); err != nil {
			return nil, fmt.Errorf("can't retrieve students: %w", err)
		}
		res = append(res, &st)
	}
	return res, nil
}

// UpdateStudent updates student data
func (db *DB) UpdateStudent(ctx context.Context, st *persistence.Student) error {
	cmd, err := db.pool.Exec(ctx, `UPDATE students SET
	name = $2,
	student_id = $3,
	gender = $4,
	age = $5,
	class_name = $6
	WHERE id = $1`, st.ID, st.Name, st.StudentID, st.Gender, st.Age, st.ClassName)
	if err != nil {
		return fmt.Errorf("can't update student: %w", err)
	}
	if cmd.RowsAffected() != 1 {
		return utils.ErrNotFound
	}
	return nil
}

// DeleteStudent removes student record
func (db *DB) DeleteStudent(ctx context.Context, id int64) error {
	cmd, err := db.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("can't delete student: %w", err)
	}
	if cmd.RowsAffected() != 1 {
		return utils.ErrNotFound
	}
	return nil
}

// InsertQuestion inserts question into DB, returns the new id
func (db *DB) InsertQuestion(ctx context.Context, q *persistence.Question) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx, `INSERT INTO questions(category, title, content, answer)
	VALUES($1, $2, $3, $4) RETURNING id`, q.Category, q.Title, q.Content, q.Answer).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("can't insert question: %w", err)
	}
	return id, nil
}

// LoadQuestion loads question from DB
func (db *DB) LoadQuestion(ctx context.Context, id int64) (*persistence.Question, error) {
	var res persistence.Question
	err := db.pool.QueryRow(ctx, `SELECT id, category, title, content, answer FROM questions
		WHERE id = $1`, id).Scan(&res.ID, &res.Category, &res.Title, &res.Content, &res.Answer)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("can't load question: %w", err)
	}
	return &res, nil
}

// ListQuestions loads questions, optionally filtered by category
func (db *DB) ListQuestions(ctx context.Context, category string) ([]*persistence.Question, error) {
	q := `SELECT id, category, title, content, answer FROM questions ORDER BY id`
	args := []interface{}{}
	if category != "" {
		q = `SELECT id, category, title, content, answer FROM questions WHERE category = $1 ORDER BY id`
		args = append(args, category)
	}
	rows, err := db.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't select questions: %w", err)
	}
	defer rows.Close()
	res := []*persistence.Question{}
	for rows.Next() {
		var it persistence.Question
		if err := rows.Scan(&it.ID, &it.Category, &it.Title, &it.Content, &it.Answer); err != nil {
			return nil, fmt.Errorf("can't retrieve questions: %w", err)
		}
		res = append(res, &it)
	}
	return res, nil
}

// UpdateQuestion updates question data
func (db *DB) UpdateQuestion(ctx context.Context, q *persistence.Question) error {
	cmd, err := db.pool.Exec(ctx, `UPDATE questions SET
	category = $2,
	title = $3,
	content = $4,
	answer = $5
	WHERE id = $1`, q.ID, q.Category, q.Title, q.Content, q.Answer)
	if err != nil {
		return fmt.Errorf("can't update question: %w", err)
	}
	if cmd.RowsAffected() != 1 {
		return utils.ErrNotFound
	}
	return nil
}

// DeleteQuestion removes question record
func (db *DB) DeleteQuestion(ctx context.Context, id int64) error {
	cmd, err := db.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("can't delete question: %w", err)
	}
	if cmd.RowsAffected() != 1 {
		return utils.ErrNotFound
	}
	return nil
}

// InsertRecording inserts recording into DB, returns the new id
func (db *DB) InsertRecording(ctx context.Context, r *persistence.Recording) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx, `INSERT INTO recordings(task_fingerprint, filename, duration,
	student_ref, student_name, question_ref, question_title, check_result, score, created)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`, r.TaskFingerprint, r.Filename,
		r.Duration, r.StudentRef, r.StudentName, r.QuestionRef, r.QuestionTitle,
		r.CheckResult, r.Score, r.Created).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("can't insert recording: %w", err)
	}
	return id, nil
}

// LoadRecording loads recording from DB
func (db *DB) LoadRecording(ctx context.Context, id int64) (*persistence.Recording, error) {
	var res persistence.Recording
	err := db.pool.QueryRow(ctx, `SELECT id, task_fingerprint, filename, duration, student_ref,
	student_name, question_ref, question_title, check_result, score, created FROM recordings
		WHERE id = $1`, id).Scan(&res.ID, &res.TaskFingerprint, &res.Filename, &res.Duration,
		&res.StudentRef, &res.StudentName, &res.QuestionRef, &res.QuestionTitle,
		&res.CheckResult, &res.Score, &res.Created)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("can't load recording: %w", err)
	}
	return &res, nil
}

// UpdateCheckResult saves the check outcome and score in one statement
func (db *DB) UpdateCheckResult(ctx context.Context, id int64, result string, score sql.NullInt32) error {
	cmd, err := db.pool.Exec(ctx, `UPDATE recordings SET
	check_result = $2,
	score = $3
	WHERE id = $1`, id, result, score)
	if err != nil {
		return fmt.Errorf("can't update check result: %w", err)
	}
	if cmd.RowsAffected() != 1 {
		return fmt.Errorf("can't update check result, no records found")
	}
	return nil
}

// ListPendingByFingerprint loads ids of unchecked recordings for one task batch
func (db *DB) ListPendingByFingerprint(ctx context.Context, fingerprint string) ([]int64, error) {
	rows, err := db.pool.Query(ctx, `SELECT id FROM recordings
	WHERE task_fingerprint = $1 AND check_result = 'pending' ORDER BY id`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("can't select recordings: %w", err)
	}
	defer rows.Close()
	res := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("can't retrieve recording ids: %w", err)
		}
		res = append(res, id)
	}
	return res, nil
}

// Live returns no error if db is reachable and initialized
func (db *DB) Live(ctx context.Context) error {
	var exists bool
	if err := db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM pg_tables WHERE tablename = 'gue_jobs')`).Scan(&exists); err != nil {
		return fmt.Errorf("can't check table: %w", err)
	}
	if !exists {
		return fmt.Errorf("no migration done")
	}
	return nil
}
