package status

// Kind represents the checking state of a recording
type Kind int

const (
	// Pending - not processed yet, the only valid pre-processing state
	Pending Kind = iota + 1
	// Checked - final state with a score
	Checked
	// Failed - final handled failure with score 0
	Failed
)

const (
	pendingStr = "pending"
	checkedStr = "checked"
)

// CheckResult is the tagged variant stored in the recordings.check_result column.
// The column keeps the legacy wire values: "pending", "checked" or
// a free-text failure message.
type CheckResult struct {
	Kind    Kind
	Message string
}

// NewPending returns the initial state
func NewPending() CheckResult {
	return CheckResult{Kind: Pending}
}

// NewChecked returns the successful final state
func NewChecked() CheckResult {
	return CheckResult{Kind: Checked}
}

// NewFailed returns a handled failure state with a message
func NewFailed(msg string) CheckResult {
	return CheckResult{Kind: Failed, Message: msg}
}

func (r CheckResult) String() string {
	switch r.Kind {
	case Checked:
		return checkedStr
	case Failed:
		return r.Message
	}
	return pendingStr
}

// Terminal indicates the recording will not be processed again
func (r CheckResult) Terminal() bool {
	return r.Kind == Checked || r.Kind == Failed
}

// Parse restores CheckResult from the stored column value
func Parse(s string) CheckResult {
	switch s {
	case pendingStr, "":
		return NewPending()
	case checkedStr:
		return NewChecked()
	}
	return NewFailed(s)
}
