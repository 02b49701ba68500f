// Command quillc drives a resolution run over a project directory, in the
// teacher's manual os.Args dispatch style (cmd/funxy/main.go) rather than
// the flag package.
package main

import (
	"fmt"
	"os"

	"github.com/quill-lang/quillc/internal/config"
	"github.com/quill-lang/quillc/internal/pipeline"
	"github.com/quill-lang/quillc/pkg/report"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  check [dir]     resolve every namespace under dir (default \".\")")
	fmt.Fprintln(os.Stderr, "  version         print the resolver-core version")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "check":
		os.Exit(runCheck())
	case "version", "-version", "--version":
		fmt.Println(config.Version)
	case "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "quillc: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func runCheck() int {
	dir := "."
	if len(os.Args) >= 3 {
		dir = os.Args[2]
	}

	proj := config.DefaultProject()
	proj.Root = dir
	if manifest := dir + string(os.PathSeparator) + config.ProjectFile; fileExists(manifest) {
		loaded, err := config.LoadProject(manifest)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		proj = loaded
	}

	driver, err := pipeline.NewDriver(proj)
	if err != nil {
		fmt.Fprintln(os.Stderr, "quillc: building namespace tree:", err)
		return 1
	}

	summary := driver.Run()
	rep := report.NewReporter(os.Stdout)
	rep.Summary(summary)

	if !summary.FullyResolved {
		return 1
	}
	return 0
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
