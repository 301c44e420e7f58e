package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/config"
	"github.com/mox-desktop/moxnotify/internal/model"
	"github.com/mox-desktop/moxnotify/pkg/collector"
	"github.com/mox-desktop/moxnotify/pkg/viewer"
)

func main() {
	zlog.Init()
	cfg := config.Must()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "moxnotifyctl",
		Short:         "Command-line client for the moxnotify services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		notifyCmd(ctx, cfg),
		closeCmd(ctx, cfg),
		searchCmd(ctx, cfg),
		watchCmd(ctx, cfg),
		viewCmd(ctx, cfg),
		forgetCmd(ctx, cfg),
		pauseCmd(ctx, cfg, "pause", true),
		pauseCmd(ctx, cfg, "resume", false),
		activeCmd(ctx, cfg),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func notifyCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	var (
		appName string
		summary string
		body    string
		urgency string
		timeout int32
		wait    bool
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collector.Dial(ctx, cfg.Collector.ControlPlaneAddress)
			if err != nil {
				return err
			}
			defer c.Close()

			n := model.Notification{
				AppName: appName,
				Summary: summary,
				Body:    body,
				Timeout: timeout,
				Hints:   model.Hints{Urgency: parseUrgency(urgency)},
			}

			id, err := c.Notify(ctx, n)
			if err != nil {
				return err
			}
			fmt.Printf("sent id=%d uuid=%s\n", id, c.UUID())

			if !wait {
				return nil
			}

			c.OnClosed = func(ev model.NotificationClosed) {
				fmt.Printf("closed id=%d reason=%s\n", ev.ID, ev.Reason)
				stopListening(c)
			}
			c.OnAction = func(ev model.ActionInvoked) {
				fmt.Printf("action id=%d key=%s\n", ev.ID, ev.ActionKey)
			}
			return c.Listen(ctx)
		},
	}

	cmd.Flags().StringVar(&appName, "app", "moxnotifyctl", "application name")
	cmd.Flags().StringVarP(&summary, "summary", "s", "", "summary line")
	cmd.Flags().StringVarP(&body, "body", "b", "", "body text")
	cmd.Flags().StringVarP(&urgency, "urgency", "u", "normal", "low, normal or critical")
	cmd.Flags().Int32VarP(&timeout, "timeout", "t", -1, "expiry in ms; -1 urgency default, 0 sticky")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the close or action event")
	_ = cmd.MarkFlagRequired("summary")

	return cmd
}

// stopListening closes the session so Listen returns.
func stopListening(c *collector.Collector) {
	_ = c.Close()
}

func closeCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	var (
		id   uint32
		uuid string
	)

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Request takedown of a notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collector.Dial(ctx, cfg.Collector.ControlPlaneAddress)
			if err != nil {
				return err
			}
			defer c.Close()

			return c.CloseNotificationFor(ctx, id, uuid)
		},
	}

	cmd.Flags().Uint32Var(&id, "id", 0, "notification id")
	cmd.Flags().StringVar(&uuid, "uuid", "", "sender uuid")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("uuid")

	return cmd
}

func searchCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	var (
		maxHits   int
		sortBy    string
		sortOrder string
		start     string
		end       string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search over the notification history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			body, err := json.Marshal(map[string]any{
				"query":           query,
				"max_hits":        maxHits,
				"sort_by":         sortBy,
				"sort_order":      sortOrder,
				"start_timestamp": start,
				"end_timestamp":   end,
			})
			if err != nil {
				return err
			}

			url := addr
			if !strings.Contains(url, "://") {
				url = "http://" + url
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/api/search", bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			out, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(out)))
			}

			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxHits, "max-hits", 20, "maximum number of hits")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "stored field to sort on")
	cmd.Flags().StringVar(&sortOrder, "sort-order", "", "asc or desc")
	cmd.Flags().StringVar(&start, "start", "", "RFC 3339 lower bound")
	cmd.Flags().StringVar(&end, "end", "", "RFC 3339 upper bound")
	cmd.Flags().StringVar(&addr, "searcher", cfg.Searcher.Address, "searcher address")

	return cmd
}

func watchCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	var (
		clientID   string
		maxVisible int
		history    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream notifications and viewport updates from the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := viewer.Dial(ctx, cfg.Scheduler.Address, viewer.Options{
				ClientID:   clientID,
				MaxVisible: maxVisible,
				History:    history,
			})
			if err != nil {
				return err
			}
			defer v.Close()

			for {
				msg, err := v.Recv(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}

				switch {
				case msg.Notification != nil:
					n := msg.Notification
					fmt.Printf("notify id=%d app=%s summary=%q\n", n.ID, n.AppName, n.Summary)
				case msg.CloseNotification != nil:
					fmt.Printf("close id=%d\n", msg.CloseNotification.ID)
				case msg.Viewport != nil:
					vp := msg.Viewport
					fmt.Printf("viewport visible=%v before=%d after=%d\n", vp.VisibleIDs, vp.BeforeCount, vp.AfterCount)
				}
			}
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "stable view state token")
	cmd.Flags().IntVar(&maxVisible, "max-visible", 5, "viewport height")
	cmd.Flags().BoolVar(&history, "history", false, "order newest-first")

	return cmd
}

func viewCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	var (
		clientID string
		id       uint32
	)

	cmd := &cobra.Command{
		Use:       "view [op]",
		Short:     "Send a viewport operation for a connected viewer",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"select", "next", "prev", "dismiss", "show_head", "show_tail", "scroll_down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := viewer.NewClient(cfg.Scheduler.Address)
			if err != nil {
				return err
			}
			return c.ViewFor(ctx, clientID, args[0], id)
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "target viewer's client id")
	cmd.Flags().Uint32Var(&id, "id", 0, "notification id, for select and dismiss")
	_ = cmd.MarkFlagRequired("client-id")

	return cmd
}

func forgetCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	var clientID string

	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Discard a viewer's saved view state on the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := viewer.NewClient(cfg.Scheduler.Address)
			if err != nil {
				return err
			}
			return c.Forget(ctx, clientID)
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "target viewer's client id")
	_ = cmd.MarkFlagRequired("client-id")

	return cmd
}

func pauseCmd(ctx context.Context, cfg *config.Config, name string, paused bool) *cobra.Command {
	short := "Pause expiry timers on the scheduler"
	if !paused {
		short = "Resume expiry timers on the scheduler"
	}
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := viewer.NewClient(cfg.Scheduler.Address)
			if err != nil {
				return err
			}
			return c.Pause(ctx, paused)
		},
	}
}

func activeCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List live notifications from the control plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := cfg.Collector.ControlPlaneAddress
			if !strings.Contains(url, "://") {
				url = "http://" + url
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/active", nil)
			if err != nil {
				return err
			}

			resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			out, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(out)))
			}

			fmt.Println(string(out))
			return nil
		},
	}
}

func parseUrgency(s string) model.Urgency {
	switch strings.ToLower(s) {
	case "low":
		return model.UrgencyLow
	case "critical":
		return model.UrgencyCritical
	default:
		return model.UrgencyNormal
	}
}
