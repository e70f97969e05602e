package main

import (
	"fmt"
	"io"
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		os.Exit(runCompositor(nil))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runCompositor(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "views":
		os.Exit(runViews(os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "close":
		os.Exit(runClose(os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "spawn":
		os.Exit(runSpawn(os.Args[2:]))
	case "quit":
		os.Exit(runQuit(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version", "--version":
		fmt.Fprintf(os.Stdout, "xrdesk %s\n", version)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		if len(os.Args[1]) > 0 && os.Args[1][0] == '-' {
			// Flags without a command belong to run.
			os.Exit(runCompositor(os.Args[1:]))
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xrdesk [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the compositor (default)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  status              Show compositor status")
	fmt.Fprintln(w, "  views               List views")
	fmt.Fprintln(w, "  focus <id>          Focus a view")
	fmt.Fprintln(w, "  close <id>          Ask a view to close")
	fmt.Fprintln(w, "  move <id> x y z     Place a view")
	fmt.Fprintln(w, "  spawn               Launch the configured terminal")
	fmt.Fprintln(w, "  quit                Stop the compositor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  version             Print the version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'xrdesk <command> --help' for command-specific options.")
}
