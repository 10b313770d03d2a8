package commands

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	arrangementhub "github.com/Duck-and-Squid/arrangement-hub"
	"github.com/Duck-and-Squid/arrangement-hub/cmd/musicxmldiff/internal/config"
)

// Overlay colors both documents and writes them as <name>.colored.xml files.
func Overlay(args []string) error {
	fs := flag.NewFlagSet("overlay", flag.ContinueOnError)
	outDir := fs.String("out", "", "output directory")
	tokensPath := fs.String("tokens", "", "apply a saved token file instead of recomputing")
	compact := fs.Bool("compact", false, "minify the colored documents")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: musicxmldiff overlay [flags] <old.xml> <new.xml>")
	}
	oldPath, newPath := rest[0], rest[1]

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if *outDir == "" {
		*outDir = cfg.OutDir
	}
	if cfg.Compact {
		*compact = true
	}

	oldXML, newXML, err := readPair(oldPath, newPath)
	if err != nil {
		return err
	}

	var tokens []arrangementhub.Token
	if *tokensPath != "" {
		data, err := os.ReadFile(*tokensPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", *tokensPath, err)
		}
		tokens, err = arrangementhub.ParseTokens(data)
		if err != nil {
			return err
		}
	} else {
		tokens, err = arrangementhub.ComputeXMLDiffTokens(oldXML, newXML)
		if err != nil {
			return err
		}
	}

	result, err := arrangementhub.ProcessMusicXMLDiff(oldXML, newXML, tokens)
	if err != nil {
		return err
	}
	if *compact {
		result.OldXML = arrangementhub.CompactXML(result.OldXML)
		result.NewXML = arrangementhub.CompactXML(result.NewXML)
	}

	if err := writeColored(oldPath, *outDir, result.OldXML); err != nil {
		return err
	}
	if err := writeColored(newPath, *outDir, result.NewXML); err != nil {
		return err
	}

	if len(result.UnusedTokens) > 0 {
		log.Printf("%d token(s) could not be projected", len(result.UnusedTokens))
	}
	return nil
}

// writeColored writes content next to the input file (or into outDir) with a
// .colored.xml suffix.
func writeColored(inputPath, outDir, content string) error {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".colored.xml"

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	outPath := filepath.Join(dir, base)
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Println(outPath)
	return nil
}
