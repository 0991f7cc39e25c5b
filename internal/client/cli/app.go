// Package cli is the terminal view layer over the client core: it collects a
// display name, renders the synchronized message view, and turns typed
// commands into publish operations.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/groupfeed/internal/client/blob"
	"github.com/dmitrijs2005/groupfeed/internal/client/config"
	"github.com/dmitrijs2005/groupfeed/internal/client/feed"
	"github.com/dmitrijs2005/groupfeed/internal/client/publish"
	clisync "github.com/dmitrijs2005/groupfeed/internal/client/sync"
	"github.com/dmitrijs2005/groupfeed/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger

	author string
	synch  *clisync.Synchronizer
	pub    *publish.Publisher

	in  *bufio.Scanner
	out io.Writer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	blobs, err := blob.NewS3Publisher(ctx, blob.Config{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("blob store init: %w", err)
	}

	feedClient := feed.NewHTTPClient(c.ServerBaseURL, logger)

	return &App{
		config: c,
		logger: logger,
		synch:  clisync.NewSynchronizer(feedClient, logger),
		pub:    publish.NewPublisher(feedClient, blobs, c.Room, logger),
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Run prompts for a display name, joins the room, and hands control to the
// REPL until EOF or /quit.
func (a *App) Run(ctx context.Context) error {
	if err := a.promptName(); err != nil {
		return err
	}

	a.synch.OnChange(a.render)
	if err := a.synch.Start(ctx, a.config.Room); err != nil {
		fmt.Fprintf(a.out, "could not join %s: %v\n", a.config.Room, err)
		// The REPL still runs so the user can /retry.
	}
	defer a.synch.Stop()

	runREPL(ctx, a, a.in, a.out)
	return nil
}

func (a *App) promptName() error {
	for {
		fmt.Fprint(a.out, "Display name: ")
		if !a.in.Scan() {
			return fmt.Errorf("no display name entered")
		}
		name := strings.TrimSpace(a.in.Text())
		if name != "" {
			a.author = name
			return nil
		}
		fmt.Fprintln(a.out, "Display name must not be empty.")
	}
}

// render repaints the message view. Invoked by the synchronizer on every
// state change.
func (a *App) render() {
	switch a.synch.State() {
	case clisync.StateLoading:
		fmt.Fprintln(a.out, "-- loading --")
	case clisync.StateError:
		if err := a.synch.Err(); err != nil {
			fmt.Fprintf(a.out, "-- feed error: %v (use /dismiss, then /retry) --\n", err)
		}
	case clisync.StateReady:
		msgs := a.synch.Messages()
		fmt.Fprintf(a.out, "---- %s (%d messages) ----\n", a.config.Room, len(msgs))
		for _, m := range msgs {
			ts := "…"
			if m.Resolved() {
				ts = time.UnixMilli(*m.Timestamp).Format("15:04")
			}
			if m.IsImage() {
				fmt.Fprintf(a.out, "[%s] %s: <image> %s\n", ts, m.Author, m.ImageRef)
			} else {
				fmt.Fprintf(a.out, "[%s] %s: %s\n", ts, m.Author, m.Text)
			}
		}
	}
}

func (a *App) sendText(ctx context.Context, text string) error {
	return a.pub.PublishText(ctx, a.author, text)
}

func (a *App) sendAttachment(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	contentType := http.DetectContentType(data)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	return a.pub.PublishAttachment(ctx, a.author, data, contentType, ext)
}

func (a *App) dismissError() {
	a.synch.DismissError()
}

func (a *App) retry(ctx context.Context) error {
	return a.synch.Start(ctx, a.config.Room)
}
