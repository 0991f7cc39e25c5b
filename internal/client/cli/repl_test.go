package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	texts     []string
	images    []string
	dismissed int
	retries   int
	sendErr   error
}

func (s *stubExec) sendText(ctx context.Context, text string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.texts = append(s.texts, text)
	return nil
}

func (s *stubExec) sendAttachment(ctx context.Context, path string) error {
	s.images = append(s.images, path)
	return nil
}

func (s *stubExec) dismissError() { s.dismissed++ }

func (s *stubExec) retry(ctx context.Context) error {
	s.retries++
	return nil
}

func run(t *testing.T, input string) (*stubExec, string) {
	t.Helper()
	stub := &stubExec{}
	var out bytes.Buffer
	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader(input)), &out)
	return stub, out.String()
}

func TestREPL_PlainLineIsSentAsText(t *testing.T) {
	stub, _ := run(t, "hello there\n/quit\n")
	assert.Equal(t, []string{"hello there"}, stub.texts)
}

func TestREPL_BlankLinesIgnored(t *testing.T) {
	stub, _ := run(t, "\n   \n/quit\n")
	assert.Empty(t, stub.texts)
}

func TestREPL_ImageCommand(t *testing.T) {
	stub, _ := run(t, "/image /tmp/cat.png\n/quit\n")
	assert.Equal(t, []string{"/tmp/cat.png"}, stub.images)
}

func TestREPL_ImageCommandWithoutPathPrintsUsage(t *testing.T) {
	stub, out := run(t, "/image\n/quit\n")
	assert.Empty(t, stub.images)
	assert.Contains(t, out, "usage: /image")
}

func TestREPL_DismissAndRetry(t *testing.T) {
	stub, _ := run(t, "/dismiss\n/retry\n/quit\n")
	assert.Equal(t, 1, stub.dismissed)
	assert.Equal(t, 1, stub.retries)
}

func TestREPL_SendErrorIsReportedAndLoopContinues(t *testing.T) {
	stub := &stubExec{sendErr: errors.New("feed down")}
	var buf bytes.Buffer
	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader("hi\n/quit\n")), &buf)
	assert.Contains(t, buf.String(), "send failed")
}

func TestREPL_UnknownCommand(t *testing.T) {
	_, out := run(t, "/bogus\n/quit\n")
	assert.Contains(t, out, "unknown command /bogus")
}

func TestREPL_EOFEndsLoop(t *testing.T) {
	stub, _ := run(t, "last words")
	assert.Equal(t, []string{"last words"}, stub.texts)
}
