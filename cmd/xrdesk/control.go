package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/1broseidon/xrdesk/internal/ipc"
)

// newControlFlags builds the flag set shared by the control subcommands.
func newControlFlags(name, usage string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path (default: $XDG_RUNTIME_DIR/xrdesk.sock)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xrdesk %s\n", usage)
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	return fs, socket
}

func clientFor(socket string) *ipc.Client {
	if socket != "" {
		return ipc.NewClientAt(socket)
	}
	return ipc.NewClient()
}

// parseFlags returns -1 to continue, or the exit code.
func parseFlags(fs *flag.FlagSet, args []string, nargs int) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != nargs {
		if nargs == 0 {
			fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		} else {
			fmt.Fprintf(os.Stderr, "%s expects %d argument(s)\n", fs.Name(), nargs)
		}
		fs.Usage()
		return 2
	}
	return -1
}

func runStatus(args []string) int {
	fs, socket := newControlFlags("status", "status [--json]")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}

	status, err := clientFor(*socket).GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	focused := status.FocusedView
	if focused == "" {
		focused = "-"
	}
	fmt.Fprintf(w, "running:        %v\n", status.Running)
	fmt.Fprintf(w, "session_state:  %s\n", status.SessionState)
	fmt.Fprintf(w, "phase:          %s\n", status.Phase)
	fmt.Fprintf(w, "frames:         %d\n", status.Frames)
	fmt.Fprintf(w, "view_count:     %d\n", status.ViewCount)
	fmt.Fprintf(w, "focused_view:   %s\n", focused)
	fmt.Fprintf(w, "pointer_mode:   %s\n", status.PointerMode)
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
}

func runViews(args []string) int {
	fs, socket := newControlFlags("views", "views [--json]")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}

	views, err := clientFor(*socket).ListViews()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(views)
	}
	printViews(os.Stdout, views.Views)
	return 0
}

func printViews(w io.Writer, views []ipc.ViewInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tTITLE\tMAPPED\tFOCUSED\tPOSITION\tSIZE")
	for _, v := range views {
		focus := ""
		if v.Focused {
			focus = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%s\t(%.2f, %.2f, %.2f)\t%dx%d\n",
			v.ID, v.Kind, v.Title, v.Mapped, focus,
			v.Position[0], v.Position[1], v.Position[2], v.Width, v.Height)
	}
	tw.Flush()
}

func runFocus(args []string) int {
	fs, socket := newControlFlags("focus", "focus <id>")
	if code := parseFlags(fs, args, 1); code >= 0 {
		return code
	}
	if err := clientFor(*socket).FocusView(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runClose(args []string) int {
	fs, socket := newControlFlags("close", "close <id>")
	if code := parseFlags(fs, args, 1); code >= 0 {
		return code
	}
	if err := clientFor(*socket).CloseView(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMove(args []string) int {
	fs, socket := newControlFlags("move", "move [--yaw R] <id> <x> <y> <z>")
	yaw := fs.String("yaw", "", "Rotation about Y in radians; other axes are zeroed")
	if code := parseFlags(fs, args, 4); code >= 0 {
		return code
	}
	pos, err := parseVec3(fs.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	var rot *[3]float32
	if *yaw != "" {
		y, err := strconv.ParseFloat(*yaw, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --yaw %q: %v\n", *yaw, err)
			return 2
		}
		rot = &[3]float32{0, float32(y), 0}
	}
	if err := clientFor(*socket).MoveView(fs.Arg(0), pos, rot); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseVec3(args []string) ([3]float32, error) {
	var out [3]float32
	if len(args) != 3 {
		return out, fmt.Errorf("expected 3 coordinates, got %d", len(args))
	}
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return out, fmt.Errorf("invalid coordinate %q: %v", a, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func runSpawn(args []string) int {
	fs, socket := newControlFlags("spawn", "spawn")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	if err := clientFor(*socket).SpawnTerminal(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runQuit(args []string) int {
	fs, socket := newControlFlags("quit", "quit")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	if err := clientFor(*socket).Quit(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
