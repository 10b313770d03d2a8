package commands

import (
	"flag"
	"log"
	"net/http"

	arrangementhub "github.com/Duck-and-Squid/arrangement-hub"
	"github.com/Duck-and-Squid/arrangement-hub/cmd/musicxmldiff/internal/config"
)

// Serve exposes the diff API over HTTP until the process is stopped.
func Serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address")
	compact := fs.Bool("compact", false, "minify documents in API responses")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if *addr == "" {
		*addr = cfg.Addr
	}
	if cfg.Compact {
		*compact = true
	}

	opts := []arrangementhub.MountOption{
		arrangementhub.WithDiffer(arrangementhub.NewDiffer(arrangementhub.WithMetrics())),
	}
	if *compact {
		opts = append(opts, arrangementhub.WithCompactOutput())
	}

	log.Printf("musicxmldiff listening on %s", *addr)
	return http.ListenAndServe(*addr, arrangementhub.Mount(opts...))
}
