package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*SherlockLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: level, Format: "json", Output: &buf, AddSource: false})
	return l, &buf
}

func TestWithRunAttachesIdentifiers(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.WithRun("thread-9", "run-42").Info("run started")

	out := buf.String()
	assert.Contains(t, out, `"thread_id":"thread-9"`)
	assert.Contains(t, out, `"run_id":"run-42"`)
	assert.Contains(t, out, "run started")
}

func TestWithRunDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	_ = l.WithRun("thread-9", "run-42")
	l.Info("unscoped entry")

	assert.NotContains(t, buf.String(), "run-42")
}

func TestLogRetrieval(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)

	l.LogRetrieval("what is a slice", []string{"d1", "d2"}, 3*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "Retrieval completed")
	assert.Contains(t, out, "what is a slice")
	assert.Contains(t, out, "d1")
}

func TestLogStageExecutionFailure(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogStageExecution("retrieval", time.Millisecond, false, assert.AnError)

	out := buf.String()
	assert.Contains(t, out, "Stage execution failed")
	assert.Contains(t, out, `"success":false`)
	assert.Contains(t, out, assert.AnError.Error())
}

func TestSherlockLoggerIsPipelineLogger(t *testing.T) {
	l, _ := newBufferLogger(LogLevelInfo)
	var pl PipelineLogger = l
	require.NotNil(t, pl.WithRun("t", "r"))
}
