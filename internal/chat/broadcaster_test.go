package chat

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var chatLineRe = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] alice: hello$`)

// pipeSession returns a registered session backed by one end of a pipe and
// a channel of lines read from the other end.
func pipeSession(t *testing.T, r *Registry, name string) (*Session, <-chan string) {
	t.Helper()

	serverEnd, clientEnd := net.Pipe()
	s := NewSession(serverEnd)
	require.NoError(t, r.Register(name, s))
	s.SetName(name)
	t.Cleanup(func() {
		_ = s.Close()
		_ = clientEnd.Close()
	})

	lines := make(chan string, 16)
	go func() {
		reader := bufio.NewReader(clientEnd)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimRight(line, "\n")
		}
	}()
	return s, lines
}

func recvLine(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case line, ok := <-ch:
		if !ok {
			t.Fatal("connection closed while waiting for a line")
		}
		return line
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for a line")
		return ""
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBroadcaster_ChatRoundTrip(t *testing.T) {
	r := NewRegistry()
	q := NewDeliveryQueue(16)
	b := NewBroadcaster(r, q, discardLogger())

	_, aliceLines := pipeSession(t, r, "alice")
	_, bobLines := pipeSession(t, r, "bob")

	b.BroadcastChat("alice", "hello")

	got := recvLine(t, aliceLines)
	require.Regexp(t, chatLineRe, got)
	require.Equal(t, got, recvLine(t, bobLines), "all recipients receive the same line verbatim")

	// Exactly one line was queued for persistence, identical to what the
	// recipients saw.
	queued, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, got, queued)
	_, ok = q.TryPeek()
	require.False(t, ok)
}

func TestBroadcaster_DeadRecipientDoesNotAbortFanout(t *testing.T) {
	r := NewRegistry()
	q := NewDeliveryQueue(16)
	b := NewBroadcaster(r, q, discardLogger())

	dead, _ := pipeSession(t, r, "dead")
	require.NoError(t, dead.Close())

	_, liveLines := pipeSession(t, r, "live")

	b.BroadcastSystem("dead has left the chat.")

	got := recvLine(t, liveLines)
	require.Contains(t, got, "dead has left the chat.")
}

func TestBroadcaster_RosterLineBypassesQueue(t *testing.T) {
	r := NewRegistry()
	q := NewDeliveryQueue(16)
	b := NewBroadcaster(r, q, discardLogger())

	_, aliceLines := pipeSession(t, r, "alice")
	_, bobLines := pipeSession(t, r, "bob")

	b.BroadcastRoster()

	for _, ch := range []<-chan string{aliceLines, bobLines} {
		line := recvLine(t, ch)
		require.True(t, strings.HasPrefix(line, RosterPrefix), "got %q", line)
		names := strings.Split(strings.TrimPrefix(line, RosterPrefix), ",")
		require.ElementsMatch(t, []string{"alice", "bob"}, names)
	}

	// Roster updates are ephemeral: nothing reaches the persistence queue.
	_, ok := q.TryPeek()
	require.False(t, ok)
}
