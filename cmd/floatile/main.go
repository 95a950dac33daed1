package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/floatile/internal/config"
	"github.com/1broseidon/floatile/internal/geometry"
	"github.com/1broseidon/floatile/internal/ipc"
	"github.com/1broseidon/floatile/internal/manager"
	"github.com/1broseidon/floatile/internal/mcp"
	"github.com/1broseidon/floatile/internal/store"
	"github.com/1broseidon/floatile/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: floatile daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: floatile daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "container":
		os.Exit(runContainer(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: floatile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the floatile daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window create       Create a window")
	fmt.Fprintln(w, "  window close        Close a window")
	fmt.Fprintln(w, "  window focus        Focus a window's tab")
	fmt.Fprintln(w, "  window restore      Restore a minimized window")
	fmt.Fprintln(w, "  window title        Rename a window")
	fmt.Fprintln(w, "  window detach       Detach a window to an external surface")
	fmt.Fprintln(w, "  window move         Move a window between containers")
	fmt.Fprintln(w, "  window list         List windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  container minimize  Minimize a container to the dock")
	fmt.Fprintln(w, "  container restore   Restore a container from the dock")
	fmt.Fprintln(w, "  container merge     Merge one container into another")
	fmt.Fprintln(w, "  container raise     Bring a container to the front")
	fmt.Fprintln(w, "  container list      List containers (back to front)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the interactive TUI host")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'floatile <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: floatile status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		fmt.Println("daemon_running:  false")
		return 0
	}
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("window_count:    %d\n", status.WindowCount)
	fmt.Printf("container_count: %d\n", status.ContainerCount)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	for _, item := range status.Dock {
		fmt.Printf("dock: %s (%s)\n", item.Label, item.ContainerID)
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: floatile reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to reload its configuration.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  floatile window create [--title T] [--content C] <id>")
	fmt.Fprintln(w, "  floatile window close <id>")
	fmt.Fprintln(w, "  floatile window focus <id>")
	fmt.Fprintln(w, "  floatile window restore <id>")
	fmt.Fprintln(w, "  floatile window title <id> <title>")
	fmt.Fprintln(w, "  floatile window detach <id>")
	fmt.Fprintln(w, "  floatile window move [--target CONTAINER] <id>")
	fmt.Fprintln(w, "  floatile window list [--json]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'floatile window <command> --help' for command-specific options.")
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printWindowUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("create", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: floatile window create [--title T] [--content C] <id>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Create a window in a fresh container at the next cascade position.")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
		title := fs.String("title", "", "Window title (default: the id)")
		content := fs.String("content", "", "Initial window content")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "window create requires <id>")
			fs.Usage()
			return 2
		}
		id := fs.Arg(0)
		t := *title
		if t == "" {
			t = id
		}
		if err := client.CreateWindow(id, t, *content); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "close", "focus", "restore", "detach":
		verb := args[0]
		fs := flag.NewFlagSet(verb, flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintf(os.Stderr, "Usage: floatile window %s <id>\n", verb)
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "window %s requires <id>\n", verb)
			fs.Usage()
			return 2
		}

		var err error
		switch verb {
		case "close":
			err = client.CloseWindow(fs.Arg(0))
		case "focus":
			err = client.FocusWindow(fs.Arg(0))
		case "restore":
			err = client.RestoreWindow(fs.Arg(0))
		case "detach":
			err = client.DetachWindow(fs.Arg(0))
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "title":
		fs := flag.NewFlagSet("title", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: floatile window title <id> <title>")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "window title requires <id> <title>")
			fs.Usage()
			return 2
		}
		if err := client.SetWindowTitle(fs.Arg(0), fs.Arg(1)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "move":
		fs := flag.NewFlagSet("move", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: floatile window move [--target CONTAINER] <id>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Move a window into another container's tab sequence, or into a")
			fmt.Fprintln(os.Stderr, "fresh container when --target is omitted.")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
		target := fs.String("target", "", "Target container id")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "window move requires <id>")
			fs.Usage()
			return 2
		}
		if err := client.MoveWindow(fs.Arg(0), *target); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: floatile window list [--json]")
		}
		jsonOut := fs.Bool("json", false, "Output windows as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		data, err := client.ListWindows()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(data.Windows); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			return 0
		}
		for _, w := range data.Windows {
			state := ""
			if w.Minimized {
				state += " [minimized]"
			}
			if w.Detached {
				state += " [detached]"
			}
			fmt.Printf("%-12s %-24s container=%s%s\n", w.ID, w.Title, w.ContainerID, state)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

func printContainerUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  floatile container minimize <id>")
	fmt.Fprintln(w, "  floatile container restore <id>")
	fmt.Fprintln(w, "  floatile container merge <source> <target>")
	fmt.Fprintln(w, "  floatile container raise <id>")
	fmt.Fprintln(w, "  floatile container list [--json]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'floatile container <command> --help' for command-specific options.")
}

func runContainer(args []string) int {
	if len(args) == 0 {
		printContainerUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printContainerUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "minimize", "restore", "raise":
		verb := args[0]
		fs := flag.NewFlagSet(verb, flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintf(os.Stderr, "Usage: floatile container %s <id>\n", verb)
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "container %s requires <id>\n", verb)
			fs.Usage()
			return 2
		}

		var err error
		switch verb {
		case "minimize":
			err = client.MinimizeContainer(fs.Arg(0))
		case "restore":
			err = client.RestoreContainer(fs.Arg(0))
		case "raise":
			err = client.RaiseContainer(fs.Arg(0))
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "merge":
		fs := flag.NewFlagSet("merge", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: floatile container merge <source> <target>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Move every tab of <source> into <target> and destroy <source>.")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "container merge requires <source> <target>")
			fs.Usage()
			return 2
		}
		if err := client.MergeContainers(fs.Arg(0), fs.Arg(1)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: floatile container list [--json]")
		}
		jsonOut := fs.Bool("json", false, "Output containers as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		data, err := client.ListContainers()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(data.Containers); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			return 0
		}
		for _, c := range data.Containers {
			state := ""
			if c.Minimized {
				state += " [minimized]"
			}
			if c.Hidden {
				state += " [hidden]"
			}
			fmt.Printf("%-6s z=%-4d %4dx%-4d at (%d,%d) tabs=%d active=%s%s\n",
				c.ID, c.ZOrder, c.Rect.Width, c.Rect.Height, c.Rect.X, c.Rect.Y,
				len(c.WindowIDs), c.ActiveWindowID, state)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown container command: %s\n\n", args[0])
		printContainerUsage(os.Stderr)
		return 2
	}
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  floatile config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  floatile config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/floatile/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/floatile/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		var err error
		if *printDefaults {
			cfg = config.Default()
		} else if *path == "" {
			cfg, err = config.Load()
		} else {
			cfg, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := cfg.Print()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(out)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/floatile/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: floatile tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive terminal host. Containers render as floating boxes;")
		fmt.Fprintln(os.Stderr, "the mouse drags tabs and headers, the bottom row is the dock.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  n         New window (prompts for a title)")
		fmt.Fprintln(os.Stderr, "  m         Minimize the front container")
		fmt.Fprintln(os.Stderr, "  d         Detach the front container's active window")
		fmt.Fprintln(os.Stderr, "  x         Close the front container's active window")
		fmt.Fprintln(os.Stderr, "  Esc       Cancel the current drag")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	var cfg *config.Config
	var err error
	if *path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromPath(*path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := tui.Run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMCP(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: floatile mcp serve")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the MCP server on stdio transport.")
		return 2
	}
	if args[0] != "serve" {
		fmt.Fprintf(os.Stderr, "Unknown mcp subcommand: %s\n", args[0])
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	server := mcp.NewServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (default window: %dx%d, merge dwell: %dms)",
		cfg.DefaultWindowWidth, cfg.DefaultWindowHeight, cfg.MergeDwellMs)

	// The daemon hosts no rendering surface; headless clients get a fixed
	// viewport and manipulate state through IPC.
	mgr := manager.New(store.New(), cfg, geometry.Size{Width: 1600, Height: 900}, nil)

	log.Println("floatile daemon started successfully")

	// Create config reload channel
	reloadChan := make(chan struct{}, 1)

	// Start IPC server
	ipcServer, err := ipc.NewServer(cfg, mgr, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				newCfg, err := config.Load()
				if err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				// The manager reads tunables through this pointer.
				*cfg = *newCfg
				log.Println("Config reloaded successfully")

			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down floatile daemon...")
				ipcServer.Stop()
				return
			}

		case <-reloadChan:
			// Config was reloaded via IPC; apply to subsequent operations.
			*cfg = *ipcServer.GetConfig()
			log.Println("Config updated via IPC reload")
		}
	}
}
