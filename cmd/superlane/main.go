package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/nickgarreis/superlane-sub004/internal/config"
	"github.com/nickgarreis/superlane-sub004/internal/logging"
)

const Version = "0.4.0"

var cliLog = logging.ForComponent(logging.CompCLI)

func init() {
	initColorProfile()
}

// initColorProfile picks the lipgloss color profile. SUPERLANE_COLOR
// (truecolor, 256, 16, none) overrides detection.
func initColorProfile() {
	switch strings.ToLower(os.Getenv("SUPERLANE_COLOR")) {
	case "truecolor", "true", "24bit":
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	case "256", "ansi256":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return
	case "16", "ansi", "basic":
		lipgloss.SetColorProfile(termenv.ANSI)
		return
	case "none", "off", "ascii":
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	if os.Getenv("WT_SESSION") != "" || os.Getenv("ITERM_SESSION_ID") != "" ||
		os.Getenv("KONSOLE_VERSION") != "" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	// Ask the terminal; most SSH sessions and older emulators land on 256
	if p := termenv.EnvColorProfile(); p == termenv.TrueColor {
		lipgloss.SetColorProfile(p)
		return
	}
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func main() {
	profile, args := extractProfileFlag(os.Args[1:])

	shutdown := setupLogging()
	defer shutdown()

	cmd := "palette"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var code int
	switch cmd {
	case "version", "--version", "-v":
		fmt.Printf("superlane v%s\n", Version)
	case "help", "--help", "-h":
		printHelp()
	case "palette":
		code = handlePalette(profile, args)
	case "query", "q":
		code = handleQuery(profile, args)
	case "recents":
		code = handleRecents(profile, args)
	case "config":
		code = handleConfig(args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		printHelp()
		code = 1
	}

	if code != 0 {
		shutdown()
		os.Exit(code)
	}
}

// setupLogging starts structured logging. Logs go to ~/.superlane/debug.log
// when SUPERLANE_DEBUG is set and are discarded otherwise so they never
// mix with palette output.
func setupLogging() func() {
	baseDir, err := config.GetSuperlaneDir()
	if err != nil {
		return func() {}
	}
	debugMode := os.Getenv("SUPERLANE_DEBUG") != ""
	logging.Init(config.LoggingConfig(baseDir, debugMode))
	log.SetOutput(logging.NewBridgeWriter(logging.CompCLI))
	log.SetFlags(0)

	if debugMode {
		cliLog.Info("started", slog.Int("pid", os.Getpid()), slog.String("version", Version))

		// SIGUSR1 dumps the ring buffer for post-mortem debugging
		usr1 := make(chan os.Signal, 1)
		signal.Notify(usr1, syscall.SIGUSR1)
		go func() {
			for range usr1 {
				dumpPath := filepath.Join(baseDir, fmt.Sprintf("crash-dump-%d.jsonl", time.Now().Unix()))
				if err := logging.DumpRingBuffer(dumpPath); err != nil {
					cliLog.Error("crash_dump_failed", slog.String("error", err.Error()))
				} else {
					cliLog.Info("crash_dump_written", slog.String("path", dumpPath))
				}
			}
		}()
	}

	var done bool
	return func() {
		if !done {
			done = true
			logging.Shutdown()
		}
	}
}

// extractProfileFlag pulls -p/--profile out of args so it works before or
// after the subcommand.
func extractProfileFlag(args []string) (string, []string) {
	var profile string
	var remaining []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case strings.HasPrefix(arg, "-p="):
			profile = strings.TrimPrefix(arg, "-p=")
		case strings.HasPrefix(arg, "--profile="):
			profile = strings.TrimPrefix(arg, "--profile=")
		case (arg == "-p" || arg == "--profile") && i+1 < len(args):
			profile = args[i+1]
			i++
		default:
			remaining = append(remaining, arg)
		}
	}
	return profile, remaining
}

func printHelp() {
	fmt.Printf("superlane v%s\n", Version)
	fmt.Println("Command palette over a workspace of projects, tasks and files")
	fmt.Println()
	fmt.Println("Usage: superlane [-p profile] [command]")
	fmt.Println()
	fmt.Println("Global Options:")
	fmt.Println("  -p, --profile <name>   Use specific profile (default: 'default')")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  palette              Open the interactive palette (default)")
	fmt.Println("  query, q <text>      Search once and print the results")
	fmt.Println("  recents [sub]        Show or clear recent selections and searches")
	fmt.Println("  config [sub]         Show, locate or create config.toml")
	fmt.Println("  version              Show version")
	fmt.Println("  help                 Show this help")
	fmt.Println()
	fmt.Println("Query Options:")
	fmt.Println("  -w, --workspace <path>   Snapshot file or directory")
	fmt.Println("  --json                   Output as JSON")
	fmt.Println("  --select <n>             Activate result n and print the navigation")
	fmt.Println("  --active <project-id>    Project that unattached files open in")
	fmt.Println()
	fmt.Println("Recents Commands:")
	fmt.Println("  recents list             Recent selections (default)")
	fmt.Println("  recents searches         Recent search terms (--filter <text>)")
	fmt.Println("  recents clear            Forget all recents")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SUPERLANE_PROFILE        Profile when -p is not given")
	fmt.Println("  SUPERLANE_DEBUG          Write debug logs to ~/.superlane/debug.log")
	fmt.Println("  SUPERLANE_COLOR          truecolor, 256, 16 or none")
}
