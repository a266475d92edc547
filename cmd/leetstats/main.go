// Command leetstats shows a profile's solved-problem stats in the terminal,
// fetched through a running leetstats server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blockedby/leetstats/internal/logger"
	"github.com/blockedby/leetstats/internal/render"
	"github.com/blockedby/leetstats/internal/snapshot"
)

const defaultServer = "http://localhost:5000"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "leetstats:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	server   string
	steps    int
	png      string
	timeout  time.Duration
	verbose  bool
	username string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	_ = godotenv.Load()

	server := os.Getenv("LEETSTATS_SERVER")
	if server == "" {
		server = defaultServer
	}

	var o options
	fs := flag.NewFlagSet("leetstats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: leetstats [-server URL] [-steps N] [-png FILE] <username>")
		fs.PrintDefaults()
	}
	fs.StringVar(&o.server, "server", server, "leetstats server base URL (env LEETSTATS_SERVER)")
	fs.IntVar(&o.steps, "steps", render.DefaultSteps, "animation frames per ring")
	fs.StringVar(&o.png, "png", "", "also save a PNG of the stats panel, rendered in headless Chrome")
	fs.DurationVar(&o.timeout, "timeout", 15*time.Second, "request timeout")
	fs.BoolVar(&o.verbose, "v", false, "debug logging to stderr")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("exactly one username is required")
	}
	if o.steps < 1 {
		return o, fmt.Errorf("steps must be positive, got %d", o.steps)
	}
	o.username = fs.Arg(0)
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, Out: stderr})
	if err != nil {
		return err
	}

	view := render.NewTerminalView(stdout)
	client := render.NewProxyClient(o.server, &http.Client{Timeout: o.timeout})
	r := render.New(view, client, render.Options{Steps: o.steps, Logger: log})

	// type the username and press Search, as on the page
	view.SetInput(o.username)
	r.Dispatch(ctx, render.Event{Type: render.EventInput, Target: render.TargetInput})
	r.Dispatch(ctx, render.Event{Type: render.EventClick, Target: render.TargetSearch})

	r.WaitAnimations()
	if err := view.Flush(); err != nil {
		return err
	}
	if msg, kind := view.Status(); kind == render.StatusError {
		return errors.New(msg)
	}

	if o.png != "" {
		c := snapshot.New(snapshot.Options{}, log)
		if err := c.Capture(ctx, o.server, o.username, o.png); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Fprintln(stdout, "saved", o.png)
	}
	return nil
}
