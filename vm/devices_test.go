package vm

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConsoleHostAskLineReadsSequentialLines(t *testing.T) {
	host := NewConsoleHost(strings.NewReader("first\nsecond\n"))
	defer host.Close()

	require.Equal(t, "first\n", host.AskLine(nil, "prompt"))
	require.Equal(t, "second\n", host.AskLine(nil, "prompt"))
}

func TestConsoleHostAskLineAfterCloseReturnsEmpty(t *testing.T) {
	host := NewConsoleHost(strings.NewReader("unread\n"))
	host.Close()

	require.Equal(t, "", host.AskLine(nil, "prompt"))
}

func TestConsoleHostAskLineOnExhaustedReaderReturnsEmpty(t *testing.T) {
	host := NewConsoleHost(strings.NewReader(""))
	defer host.Close()

	done := make(chan string, 1)
	go func() { done <- host.AskLine(nil, "prompt") }()

	select {
	case line := <-done:
		require.Equal(t, "", line)
	case <-time.After(time.Second):
		t.Fatal("AskLine did not return on an exhausted reader")
	}
}
