package chat

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
)

// HistoryStore appends every broadcast line to a plain-text transcript,
// one line per file line. All appends flow through the server's single
// queue drainer, so the file never sees interleaved partial writes.
type HistoryStore struct {
	mu   sync.Mutex
	file *os.File
}

func OpenHistory(path string) (*HistoryStore, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return &HistoryStore{file: f}, nil
}

func (h *HistoryStore) Append(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (h *HistoryStore) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Close()
}

// LoadHistory reads a transcript back as one string per line. A missing
// file is not an error; the transcript simply has no lines yet.
func LoadHistory(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}
	return lines, nil
}
