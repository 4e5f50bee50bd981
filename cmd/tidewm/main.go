package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/1broseidon/tidewm/internal/config"
	"github.com/1broseidon/tidewm/internal/ipc"
	"github.com/1broseidon/tidewm/internal/mcp"
)

func main() {
	// Bare invocation starts the manager, so an .xinitrc line stays a
	// one-worder.
	if len(os.Args) < 2 {
		os.Exit(runWM(nil))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runWM(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "workspace":
		os.Exit(runWorkspace(os.Args[2:]))
	case "spawn":
		os.Exit(runSpawn(os.Args[2:]))
	case "quit":
		os.Exit(runQuit(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "check-config":
		os.Exit(runCheckConfig(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: tidewm [command]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the window manager (default)")
	fmt.Fprintln(w, "  status              Show manager status via IPC")
	fmt.Fprintln(w, "  workspace <n>       Switch to workspace n (1-9)")
	fmt.Fprintln(w, "  spawn <command>     Launch a program on the managed display")
	fmt.Fprintln(w, "  quit                Ask the manager to exit")
	fmt.Fprintln(w, "  mcp                 Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  check-config        Validate the configuration file")
	fmt.Fprintln(w, "  help                Show this help")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tidewm status [-json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show manager status via IPC.")
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
	status, err := client.Status()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut || !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	occupied := make([]string, len(status.OccupiedWorkspaces))
	for i, n := range status.OccupiedWorkspaces {
		occupied[i] = strconv.Itoa(n)
	}
	fmt.Printf("active_workspace:    %d\n", status.ActiveWorkspace)
	fmt.Printf("layout:              %s\n", status.LayoutName)
	fmt.Printf("focused_title:       %s\n", status.FocusedTitle)
	fmt.Printf("window_count:        %d\n", status.WindowCount)
	fmt.Printf("occupied_workspaces: %s\n", strings.Join(occupied, " "))
	fmt.Printf("bar_visible:         %v\n", status.BarVisible)
	fmt.Printf("uptime_seconds:      %d\n", status.UptimeSeconds)
	return 0
}

func runWorkspace(args []string) int {
	if len(args) != 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: tidewm workspace <n>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Switch the visible workspace (1-9).")
		if len(args) == 1 {
			return 0
		}
		return 2
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "workspace: %q is not a number\n", args[0])
		return 2
	}

	client := ipc.NewClient()
	if err := client.SwitchWorkspace(n); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSpawn(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: tidewm spawn <command> [args...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Launch a program on the managed display (run via sh -c).")
		if len(args) != 0 {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Spawn(strings.Join(args, " ")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runQuit(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: tidewm quit")
		return 2
	}

	client := ipc.NewClient()
	if err := client.Quit(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMCP(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: tidewm mcp")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Serve MCP tools on stdio, forwarding to the running manager.")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer()
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runCheckConfig(args []string) int {
	fs := flag.NewFlagSet("check-config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "config file to check (default: standard location)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tidewm check-config [-config path]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Parse and validate the configuration, including every keybinding.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	if *path != "" {
		cfg, err = config.LoadFromPath(*path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := cfg.ResolveBindings(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config OK")
	return 0
}
