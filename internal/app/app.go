package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "fetch":
		return runFetch(args[1:])
	case "run", "run-once":
		return runBuild(args[1:])
	case "brief":
		return runBrief(args[1:])
	case "briefs":
		return runBriefs(args[1:])
	case "sources":
		return runSources(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "hash-password":
		return runHashPassword(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "daybrief CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  daybrief <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health         Verify config, input files and database connectivity")
	fmt.Fprintln(os.Stderr, "  fetch          Fetch every registered feed and report record counts")
	fmt.Fprintln(os.Stderr, "  run            Build today's brief and print or archive it")
	fmt.Fprintln(os.Stderr, "  run-once       Alias for run")
	fmt.Fprintln(os.Stderr, "  brief          Show one archived brief by date")
	fmt.Fprintln(os.Stderr, "  briefs         List archived briefs")
	fmt.Fprintln(os.Stderr, "  sources        List source metadata, optionally sync the file into Postgres")
	fmt.Fprintln(os.Stderr, "  validate       Validate the feeds, sources and settings files")
	fmt.Fprintln(os.Stderr, "  hash-password  Generate a bcrypt hash for EDITOR_PASSWORD_HASH")
	fmt.Fprintln(os.Stderr, "  serve          Start the Echo API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"daybrief <command> -h\" for command-specific flags.")
}
