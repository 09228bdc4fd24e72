package chat

import "time"

const (
	// QuitCommand ends a session when received from a client; the server
	// also sends it as its final line when it disconnects a client itself.
	QuitCommand = "/quit"

	// RosterPrefix marks a control line carrying the comma-joined list of
	// connected names. Names containing commas are not escaped; that is a
	// documented limitation of the wire format.
	RosterPrefix = "USERLIST:"

	// TimestampLayout is the server-local stamp prepended to every
	// broadcast line.
	TimestampLayout = "2006-01-02 15:04:05"
)

// writeTimeout bounds a single outbound line write so a dead or stalled
// peer cannot hold up fan-out to everyone else.
const writeTimeout = 2 * time.Second

var (
	ErrNameTaken     = errorString("name already taken")
	ErrSessionClosed = errorString("session closed")
)

type errorString string

func (e errorString) Error() string { return string(e) }
