package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// normalizeArgs moves flags in front of positional arguments. The flag
// package stops at the first positional, so "query brief --json" would
// otherwise drop --json.
func normalizeArgs(fs *flag.FlagSet, args []string) []string {
	boolFlags := make(map[string]bool)
	fs.VisitAll(func(f *flag.Flag) {
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			boolFlags[f.Name] = true
		}
	})

	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(arg, "-") && arg != "-" {
			flags = append(flags, arg)
			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") {
				continue
			}
			if !boolFlags[name] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
			continue
		}
		positional = append(positional, arg)
	}
	return append(flags, positional...)
}

// CLIOutput prints either human-readable text or JSON
type CLIOutput struct {
	jsonMode bool
	out      io.Writer
	errOut   io.Writer
}

// NewCLIOutput writes to stdout and stderr
func NewCLIOutput(jsonMode bool) *CLIOutput {
	return &CLIOutput{jsonMode: jsonMode, out: os.Stdout, errOut: os.Stderr}
}

// Success prints a confirmation line or data as JSON
func (c *CLIOutput) Success(message string, data any) {
	if c.jsonMode {
		c.printJSON(data)
		return
	}
	fmt.Fprintf(c.out, "%s %s\n", successSymbol, message)
}

// Error prints an error message or a JSON error object
func (c *CLIOutput) Error(message string, code string) {
	if c.jsonMode {
		c.printJSON(map[string]any{
			"success": false,
			"error":   message,
			"code":    code,
		})
		return
	}
	fmt.Fprintf(c.errOut, "Error: %s\n", message)
}

// Print prints human output or jsonData
func (c *CLIOutput) Print(human string, jsonData any) {
	if c.jsonMode {
		c.printJSON(jsonData)
		return
	}
	fmt.Fprint(c.out, human)
}

func (c *CLIOutput) printJSON(data any) {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(c.errOut, "Error: failed to format JSON: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, string(output))
}

const (
	successSymbol = "✓"
	bulletSymbol  = "•"
)

// Error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeLoadFailed       = "LOAD_FAILED"
)
