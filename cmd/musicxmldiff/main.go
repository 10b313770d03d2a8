package main

import (
	"fmt"
	"os"

	"github.com/Duck-and-Squid/arrangement-hub/cmd/musicxmldiff/commands"
)

// Version information (can be overridden at build time with -ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error

	switch command {
	case "tokens":
		err = commands.Tokens(args)
	case "overlay":
		err = commands.Overlay(args)
	case "summary":
		err = commands.Summary(args)
	case "serve":
		err = commands.Serve(args)
	case "version", "--version", "-v":
		fmt.Printf("musicxmldiff %s (%s)\n", version, commit)
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`musicxmldiff - structural MusicXML diff and overlay coloring

Usage:
  musicxmldiff tokens <old.xml> <new.xml>              Print the diff token stream as JSON
  musicxmldiff overlay [flags] <old.xml> <new.xml>     Write both documents with color overlays
  musicxmldiff summary <old.xml> <new.xml>             Print a human-readable diff report
  musicxmldiff serve [flags]                           Serve the diff API over HTTP
  musicxmldiff version                                 Print version information

Overlay flags:
  -out <dir>       output directory (default: config value or the input directory)
  -tokens <file>   apply a saved token file instead of recomputing
  -compact         minify the colored documents

Serve flags:
  -addr <addr>     listen address (default: config value or :8080)
  -compact         minify documents in API responses

Configuration is read from .musicxmldiff.yaml in the working directory when
present.`)
}
