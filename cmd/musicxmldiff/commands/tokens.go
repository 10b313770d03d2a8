// Package commands implements the musicxmldiff subcommands.
package commands

import (
	"fmt"
	"os"

	arrangementhub "github.com/Duck-and-Squid/arrangement-hub"
)

// Tokens computes the diff token stream for two documents and prints it as
// JSON.
func Tokens(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: musicxmldiff tokens <old.xml> <new.xml>")
	}

	oldXML, newXML, err := readPair(args[0], args[1])
	if err != nil {
		return err
	}

	tokens, err := arrangementhub.ComputeXMLDiffTokens(oldXML, newXML)
	if err != nil {
		return err
	}

	data, err := arrangementhub.MarshalTokens(tokens)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Summary prints a human-readable report of the differences.
func Summary(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: musicxmldiff summary <old.xml> <new.xml>")
	}

	oldXML, newXML, err := readPair(args[0], args[1])
	if err != nil {
		return err
	}

	differ := arrangementhub.NewDiffer()
	tokens, err := differ.ComputeTokens(oldXML, newXML)
	if err != nil {
		return err
	}
	fmt.Print(differ.Summarize(tokens))
	return nil
}

func readPair(oldPath, newPath string) (string, string, error) {
	oldData, err := os.ReadFile(oldPath)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", oldPath, err)
	}
	newData, err := os.ReadFile(newPath)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", newPath, err)
	}
	return string(oldData), string(newData), nil
}
