package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaily_Deterministic(t *testing.T) {
	at := time.Date(2025, 3, 23, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, Daily(10, at), Daily(10, at))
	// time of day does not matter
	assert.Equal(t, Daily(10, at), Daily(10, at.Add(time.Hour*5)))
}

func TestDaily_Value(t *testing.T) {
	at := time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC)
	res := Daily(10, at)
	require.Len(t, res, 40)
	assert.Equal(t, res, Daily(10, at))
	assert.Regexp(t, "^[0-9a-f]+$", res)
}

func TestDaily_Differs(t *testing.T) {
	at := time.Date(2025, 3, 23, 10, 0, 0, 0, time.UTC)
	assert.NotEqual(t, Daily(10, at), Daily(11, at))
	assert.NotEqual(t, Daily(10, at), Daily(10, at.AddDate(0, 0, 1)))
}
