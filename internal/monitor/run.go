package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/muurk/aiobridge/internal/ui"
)

// Run shows the feed at url until the user quits or ctx is cancelled. When
// stdout is not a terminal updates are written to out as plain lines.
func Run(ctx context.Context, url string, out io.Writer) error {
	if !ui.IsTerminal() {
		return RunPlain(ctx, url, out)
	}

	p := tea.NewProgram(NewModel(ctx, url), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// RunPlain writes one line per update until the feed closes or ctx is done
func RunPlain(ctx context.Context, url string, out io.Writer) error {
	feed, err := Connect(ctx, url)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = feed.Close()
	}()

	for {
		msg, err := feed.Next()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("feed closed: %w", err)
		}
		_, _ = fmt.Fprintf(out, "%s %s=%s\n", msg.Time.Format("2006-01-02T15:04:05.000Z07:00"), msg.Key, msg.Value)
	}
}
