package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Daily derives the task fingerprint correlating all recordings uploaded
// for a question on one calendar day. Lowercase hex SHA-1 over
// "{question_id}_{date}", stable for the same (question, day) pair
func Daily(questionID int64, at time.Time) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%d_%s", questionID, at.Format(dateLayout))))
	return hex.EncodeToString(sum[:])
}
