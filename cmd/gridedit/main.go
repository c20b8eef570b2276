package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/lixenwraith/gridedit/audio"
	"github.com/lixenwraith/gridedit/config"
	"github.com/lixenwraith/gridedit/editor"
	"github.com/lixenwraith/gridedit/store"
	"github.com/lixenwraith/gridedit/terminal"
)

const logFileName = "gridedit.log"

const usageText = `Usage: gridedit [flags] <command>

Commands:
  new          start a new document
  load <id>    edit the stored document with the given id

Flags:
`

// rendererFactory opens the display for a rows x cols grid
type rendererFactory func(rows, cols int) (editor.Renderer, error)

func main() {
	// Restore the terminal before printing a panic
	defer func() {
		if r := recover(); r != nil {
			terminal.HandleCrash(r)
		}
	}()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, openTerminal))
}

// run executes one editor invocation and returns the process exit code
func run(args []string, stdout, stderr io.Writer, open rendererFactory) int {
	fs := flag.NewFlagSet("gridedit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultPath, "Path to TOML configuration file")
	debug := fs.Bool("debug", false, "Write a debug log to the configured log directory")
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}

	req, err := editor.ParseRequest(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "gridedit: %v\n", err)
		fs.Usage()
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "gridedit: %v\n", err)
		return 1
	}

	logFile := setupLogging(*debug || cfg.Log.Debug, cfg.Log.Dir)
	if logFile != nil {
		defer logFile.Close()
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		fmt.Fprintf(stderr, "gridedit: %v\n", err)
		return 1
	}
	defer st.Close()

	opts := []editor.Option{editor.WithTimeout(cfg.Store.Timeout())}
	if cfg.Editor.Bell {
		bell := audio.NewBell()
		if err := bell.Init(); err != nil {
			log.Printf("audio unavailable, bell disabled: %v", err)
		} else {
			defer bell.Close()
			opts = append(opts, editor.WithBell(bell))
		}
	}

	session := editor.NewSession(st, cfg.Grid.Rows, cfg.Grid.Cols, opts...)
	err = session.Run(ctx, req, func() (editor.Renderer, error) {
		return open(cfg.Grid.Rows, cfg.Grid.Cols)
	})

	switch {
	case err == nil:
		fmt.Fprintf(stdout, "saved document %d\n", session.ID())
		return 0
	case errors.Is(err, editor.ErrInput):
		// Input failure outranks a failed save that may be joined with it
		fmt.Fprintf(stderr, "gridedit: %v\n", err)
		return 1
	case errors.Is(err, store.ErrWriteFailed):
		// Terminal is already released; report the loss but exit cleanly
		fmt.Fprintf(stderr, "gridedit: document %d not saved: %v\n", session.ID(), err)
		return 0
	default:
		fmt.Fprintf(stderr, "gridedit: %v\n", err)
		return 1
	}
}

// openTerminal is the production renderer factory
func openTerminal(rows, cols int) (editor.Renderer, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}
	return terminal.New(rows, cols)
}

// setupLogging routes the standard logger to a file when debug is set and discards it otherwise
// Returns the open log file, or nil when logging is disabled or the file cannot be created
func setupLogging(debug bool, dir string) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetPrefix(fmt.Sprintf("[%s] ", uuid.NewString()[:8]))
	log.Printf("=== gridedit started (pid %d) ===", os.Getpid())
	return f
}
