package persistence

import (
	"database/sql"
	"time"
)

type (

	//Student table
	Student struct {
		ID        int64
		Name      string
		StudentID string
		Gender    string
		Age       int
		ClassName string
	}

	//Question table, supplies the reference text answers are checked against
	Question struct {
		ID       int64
		Category string
		Title    string
		Content  string
		Answer   sql.NullString
	}

	//Recording table - the unit of checking work
	Recording struct {
		ID              int64
		TaskFingerprint string
		Filename        string
		Duration        float64
		StudentRef      string
		StudentName     string
		QuestionRef     int64
		QuestionTitle   string
		CheckResult     string
		Score           sql.NullInt32
		Created         time.Time
	}
)
