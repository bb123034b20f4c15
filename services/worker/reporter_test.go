package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingMessenger struct {
	texts []string
	err   error
}

func (m *recordingMessenger) SendMessage(ctx context.Context, text string) error {
	m.texts = append(m.texts, text)
	return m.err
}

func TestChatReporter(t *testing.T) {
	messenger := &recordingMessenger{}
	r := NewChatReporter(messenger, true)

	r.Report(context.Background(), errors.New("boom"))
	assert.Equal(t, []string{"Error while checking: boom"}, messenger.texts)

	r.Report(context.Background(), nil)
	assert.Len(t, messenger.texts, 1)
}

func TestChatReporterSwallowsFailures(t *testing.T) {
	messenger := &recordingMessenger{err: errors.New("chat unreachable")}
	r := NewChatReporter(messenger, true)

	assert.NotPanics(t, func() {
		r.Report(context.Background(), errors.New("boom"))
	})
}

func TestChatReporterDisabled(t *testing.T) {
	messenger := &recordingMessenger{}
	NewChatReporter(messenger, false).Report(context.Background(), errors.New("boom"))
	assert.Empty(t, messenger.texts)

	assert.NotPanics(t, func() {
		NewChatReporter(nil, true).Report(context.Background(), errors.New("boom"))
	})
}
