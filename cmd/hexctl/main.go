// Command hexctl drives a running hexworks server: one-shot commands, or a
// turn driver that ends turns on an interval and logs progress.
//
// Usage:
//
//	hexctl status
//	hexctl cell X Y
//	hexctl view X Y W H
//	hexctl build VARIANT X Y
//	hexctl end-turn [N]
//	hexctl snapshot
//	hexctl drive
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/hexworks/internal/client"
)

func main() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	// Configuration from environment.
	apiURL := envOrDefault("HEXWORKS_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("HEXWORKS_ADMIN_KEY")
	intervalMS := envIntOrDefault("HEXCTL_INTERVAL_MS", 1000)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hexctl status|cell|view|build|end-turn|snapshot|drive")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(apiURL, adminKey)
	if err := run(ctx, c, os.Args[1], os.Args[2:], time.Duration(intervalMS)*time.Millisecond); err != nil {
		slog.Error("hexctl failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, cmd string, args []string, interval time.Duration) error {
	switch cmd {
	case "status":
		st, err := c.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(st)

	case "cell":
		xy, err := ints(args, 2)
		if err != nil {
			return err
		}
		d, err := c.Cell(ctx, xy[0], xy[1])
		if err != nil {
			return err
		}
		fmt.Printf("(%d,%d) %s node=%s scheduled=%t\n", d.X, d.Y, d.State, d.Node, d.Scheduled)
		fmt.Printf("options: %v\n", d.Options)

	case "view":
		r, err := ints(args, 4)
		if err != nil {
			return err
		}
		v, err := c.Viewport(ctx, r[0], r[1], r[2], r[3])
		if err != nil {
			return err
		}
		// Columns run along x; print one line per y.
		for y := 0; y < v.H; y++ {
			for _, col := range v.Columns {
				fmt.Print(string([]rune(col)[y]))
			}
			fmt.Println()
		}

	case "build":
		if len(args) != 3 {
			return fmt.Errorf("build needs VARIANT X Y")
		}
		xy, err := ints(args[1:], 2)
		if err != nil {
			return err
		}
		state, err := c.Build(ctx, args[0], xy[0], xy[1])
		if err != nil {
			return err
		}
		fmt.Printf("(%d,%d) %s\n", xy[0], xy[1], state)

	case "end-turn":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return fmt.Errorf("invalid turn count %q", args[0])
			}
			n = v
		}
		for i := 0; i < n; i++ {
			r, err := c.EndTurn(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("turn %d: visited %d, refunded %d, %d errors\n", r.Turn, r.Visited, r.Refunded, len(r.Errors))
		}

	case "snapshot":
		if err := c.Snapshot(ctx); err != nil {
			return err
		}
		fmt.Println("snapshot saved")

	case "drive":
		return drive(ctx, c, interval)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// drive waits for the server, then ends a turn every interval until
// interrupted.
func drive(ctx context.Context, c *client.Client, interval time.Duration) error {
	slog.Info("hexctl driver starting", "api_url", c.BaseURL, "interval", interval)

	readyCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	err := c.WaitReady(readyCtx)
	cancel()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("received signal, shutting down")
			return nil
		case <-ticker.C:
			r, err := c.EndTurn(ctx)
			if err != nil {
				slog.Error("end turn failed", "error", err)
				continue
			}
			for _, e := range r.Errors {
				slog.Warn("cell error", "turn", r.Turn, "error", e)
			}
			if r.Turn%10 == 0 {
				st, err := c.Status(ctx)
				if err != nil {
					slog.Error("status failed", "error", err)
					continue
				}
				slog.Info("turn complete",
					"turn", humanize.Comma(int64(st.Turn)),
					"coin", humanize.Comma(int64(st.Resources.Coin)),
					"wood_delivered", st.Resources.WoodDelivered,
					"tiles", st.Resources.Tiles,
					"builds", st.Resources.BuildsInProgress,
				)
			}
		}
	}
}

func printStatus(st *client.Status) {
	fmt.Printf("world %s (seed %d), turn %s\n", st.ID, st.Seed, humanize.Comma(int64(st.Turn)))
	fmt.Printf("coin %s  wood delivered %s  tiles %d  leak %d  efficiency %.3f\n",
		humanize.Comma(int64(st.Resources.Coin)),
		humanize.Comma(int64(st.Resources.WoodDelivered)),
		st.Resources.Tiles, st.Resources.Leak, st.Resources.HeatEfficiency)
	fmt.Printf("builds in progress %d  chunks %d  scheduled %v\n", st.Resources.BuildsInProgress, st.Chunks, st.Scheduled)
	if st.Running && st.IntervalMS > 0 {
		fmt.Printf("autoplay every %dms\n", st.IntervalMS)
	}
}

func ints(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d integer arguments, got %d", n, len(args))
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
