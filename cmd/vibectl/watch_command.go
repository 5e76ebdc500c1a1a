package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"moodmate/internal/notifications"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live community events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			wsURL, err := client.WebsocketURL()
			if err != nil {
				return err
			}
			log := ctx.logger(cmd)

			dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
			conn, resp, err := dialer.DialContext(cmd.Context(), wsURL, nil)
			if err != nil {
				if resp != nil {
					return fmt.Errorf("connect to event stream: %s", http.StatusText(resp.StatusCode))
				}
				return fmt.Errorf("connect to event stream: %w", err)
			}
			defer func() { _ = conn.Close() }()
			log.Debug("event stream connected", slog.String("url", redactToken(wsURL)))

			stop := context.AfterFunc(cmd.Context(), func() { _ = conn.Close() })
			defer stop()

			for seen := 0; count <= 0 || seen < count; seen++ {
				_, raw, err := conn.ReadMessage()
				if err != nil {
					if cmd.Context().Err() != nil {
						return cmd.Context().Err()
					}
					if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
						return nil
					}
					return fmt.Errorf("read event: %w", err)
				}
				var evt notifications.Event
				if err := json.Unmarshal(raw, &evt); err != nil {
					log.Warn("skipping malformed event", slog.String("error", err.Error()))
					continue
				}
				if err := printEvent(cmd, ctx, evt, raw); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Exit after this many events (0 streams forever)")
	return cmd
}

func printEvent(cmd *cobra.Command, ctx *commandContext, evt notifications.Event, raw []byte) error {
	out := cmd.OutOrStdout()
	if ctx.jsonOutput() {
		_, err := fmt.Fprintln(out, string(raw))
		return err
	}
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return errors.New("encode event payload")
	}
	_, err = fmt.Fprintf(out, "%s  %-18s %s\n", time.Now().Format(time.TimeOnly), evt.Type, payload)
	return err
}

func redactToken(u string) string {
	if i := strings.Index(u, "token="); i >= 0 {
		return u[:i+len("token=")] + "***"
	}
	return u
}
