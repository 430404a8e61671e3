package handler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"
)

type testMsg struct {
	ID string `json:"id"`
}

type testData struct {
	calls int
	err   error
}

func testHandler(ctx context.Context, m *testMsg, d *testData) error {
	d.calls++
	return d.err
}

func Test_Create_OK(t *testing.T) {
	d := &testData{}
	wf := Create(d, testHandler, DefaultOpts[testMsg]().WithBackoff(NoBackoff()))
	err := wf(context.Background(), &gue.Job{Args: []byte(`{"id":"1"}`)})
	assert.Nil(t, err)
	assert.Equal(t, 1, d.calls)
}

func Test_Create_Retries(t *testing.T) {
	d := &testData{err: fmt.Errorf("olia err")}
	wf := Create(d, testHandler, DefaultOpts[testMsg]().WithBackoff(NoBackoff()))
	err := wf(context.Background(), &gue.Job{Args: []byte(`{"id":"1"}`)})
	assert.NotNil(t, err)
	assert.Equal(t, 1, d.calls)
}

func Test_Create_SkipsAfterRetries(t *testing.T) {
	d := &testData{err: fmt.Errorf("olia err")}
	wf := Create(d, testHandler, DefaultOpts[testMsg]().WithBackoff(NoBackoff()))
	err := wf(context.Background(), &gue.Job{Args: []byte(`{"id":"1"}`), ErrorCount: 4})
	assert.Nil(t, err)
	assert.Equal(t, 1, d.calls)
}

func Test_Create_WrongMsg(t *testing.T) {
	d := &testData{}
	wf := Create(d, testHandler, DefaultOpts[testMsg]().WithBackoff(NoBackoff()))
	err := wf(context.Background(), &gue.Job{Args: []byte(`olia`)})
	assert.NotNil(t, err)
	assert.Equal(t, 0, d.calls)
}

func Test_Create_Timeout(t *testing.T) {
	d := &testData{}
	wf := Create(d, func(ctx context.Context, m *testMsg, d *testData) error {
		d.calls++
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second * 5):
			return nil
		}
	}, DefaultOpts[testMsg]().WithTimeout(time.Millisecond*20).WithBackoff(NoBackoff()))
	err := wf(context.Background(), &gue.Job{Args: []byte(`{"id":"1"}`), ErrorCount: 4})
	require.Nil(t, err) // no retry after several failures
	assert.Equal(t, 1, d.calls)
}

func Test_DefaultBackoffOrTest(t *testing.T) {
	assert.Equal(t, time.Duration(0), DefaultBackoffOrTest(true)(5))
	assert.LessOrEqual(t, DefaultBackoffOrTest(false)(2), time.Second*20)
}
