package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs.
// The real App type satisfies it; tests can provide a lightweight stub.
type execIface interface {
	sendText(ctx context.Context, text string) error
	sendAttachment(ctx context.Context, path string) error
	dismissError()
	retry(ctx context.Context) error
}

// runREPL is a simple read–eval–print loop: any plain line is published as a
// text message; lines starting with '/' are commands.
//
// Commands:
//
//	/image <path>  — publish an image attachment
//	/dismiss       — dismiss the current feed error
//	/retry         — re-subscribe after a feed error
//	/help          — show available commands
//	/quit | /exit  — leave the program
//
// Publish errors are printed and the loop continues; a failed send never
// tears down the session.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		if !strings.HasPrefix(line, "/") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := a.sendText(ctx, line); err != nil {
				fmt.Fprintf(out, "send failed: %v\n", err)
			}
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "/help":
			fmt.Fprintln(out, "Commands: /image <path>, /dismiss, /retry, /quit. Anything else is sent as text.")
		case "/image":
			if len(parts) < 2 {
				fmt.Fprintln(out, "usage: /image <path>")
				continue
			}
			if err := a.sendAttachment(ctx, parts[1]); err != nil {
				fmt.Fprintf(out, "upload failed: %v\n", err)
			}
		case "/dismiss":
			a.dismissError()
		case "/retry":
			if err := a.retry(ctx); err != nil {
				fmt.Fprintf(out, "retry failed: %v\n", err)
			}
		case "/quit", "/exit":
			return
		default:
			fmt.Fprintf(out, "unknown command %s (try /help)\n", parts[0])
		}
	}
}
