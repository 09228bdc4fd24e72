package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"

	"github.com/andy6609/chat-relay/internal/chat"
)

func main() {
	addr := flag.String("addr", "localhost:12345", "server address")
	name := flag.String("name", "", "display name")
	historyFile := flag.String("history", "", "local transcript to replay before connecting")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: client -name <display name> [-addr host:port]")
		os.Exit(2)
	}

	if *historyFile != "" {
		replayHistory(*historyFile)
	}

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)

	greeting, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "read greeting: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(greeting)

	if _, err := fmt.Fprintln(conn, *name); err != nil {
		fmt.Fprintf(os.Stderr, "send name: %v\n", err)
		os.Exit(1)
	}

	msgCh := make(chan string, 16)
	errCh := make(chan error, 1)

	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				errCh <- err
				return
			}
			msgCh <- strings.TrimRight(line, "\r\n")
		}
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if _, err := fmt.Fprintln(conn, text); err != nil {
				errCh <- err
				return
			}
			if strings.EqualFold(text, chat.QuitCommand) {
				errCh <- nil
				return
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case msg := <-msgCh:
			render(msg)
			if strings.Contains(msg, "already taken") {
				os.Exit(1)
			}
			if strings.EqualFold(msg, chat.QuitCommand) {
				// Server-initiated disconnect.
				return
			}
		case err := <-errCh:
			if err != nil {
				fmt.Fprintf(os.Stderr, "disconnected: %v\n", err)
			}
			return
		case <-sigCh:
			fmt.Fprintln(conn, chat.QuitCommand)
			time.Sleep(100 * time.Millisecond)
			return
		}
	}
}

// replayHistory prints the tail of a local transcript so rejoining users
// see recent context before live messages start arriving.
func replayHistory(path string) {
	lines, err := chat.LoadHistory(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", path, err)
		return
	}
	const tail = 20
	if len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	for _, line := range lines {
		color.Gray.Println(line)
	}
}

func render(msg string) {
	switch {
	case strings.HasPrefix(msg, chat.RosterPrefix):
		raw := strings.TrimPrefix(msg, chat.RosterPrefix)
		names := chat.SortNames(strings.Split(raw, ","))
		color.Cyan.Println("online: " + strings.Join(names, ", "))
	case strings.HasSuffix(msg, "has joined the chat.") || strings.HasSuffix(msg, "has left the chat."):
		color.Yellow.Println(msg)
	default:
		fmt.Println(msg)
	}
}
