package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/xrdesk/internal/config"
)

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xrdesk config validate [--path PATH]")
	fmt.Fprintln(w, "  xrdesk config print [--path PATH] [--defaults]")
	fmt.Fprintln(w, "  xrdesk config path")
	fmt.Fprintln(w, "  xrdesk config explain [--path PATH] <yaml.path>")
}

func runConfig(args []string) int {
	if len(args) == 0 {
		printConfigUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: $XDG_CONFIG_HOME/xrdesk/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if res.File == "" {
			fmt.Println("OK (no config file, using defaults)")
		} else {
			fmt.Printf("OK (%s)\n", res.File)
		}
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: $XDG_CONFIG_HOME/xrdesk/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no file, no environment)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		out, err := config.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		os.Stdout.Write(out)
		return 0

	case "path":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: $XDG_CONFIG_HOME/xrdesk/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			printConfigUsage(os.Stderr)
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("%s: %v\n", fs.Arg(0), value)
		fmt.Printf("source: %s\n", describeSource(src))
		return 0

	case "help", "-h", "--help":
		printConfigUsage(os.Stdout)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n\n", args[0])
		printConfigUsage(os.Stderr)
		return 2
	}
}

func describeSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		return fmt.Sprintf("%s:%d:%d", src.File, src.Line, src.Column)
	case config.SourceEnv:
		return "$" + src.Name
	default:
		return "default"
	}
}
