package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/ledgererr"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	errColor     = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
	addColor     = color.New(color.FgGreen)
	delColor     = color.New(color.FgRed)
)

// result prints v as YAML when err is nil.
func result[T any](v T, err error) error {
	if err != nil {
		return err
	}
	return show(v)
}

func show(v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func heading(s string) {
	headingColor.Println(s)
}

func success(s string) {
	okColor.Println(s)
}

func row(cols ...string) {
	fmt.Printf("%-32s", cols[0])
	for _, c := range cols[1:] {
		fmt.Printf(" %-12s", c)
	}
	fmt.Println()
}

func activeLabel(active bool) string {
	if active {
		return okColor.Sprint("active")
	}
	return dimColor.Sprint("inactive")
}

func printDiff(diff string) {
	if diff == "" {
		dimColor.Println("no change")
		return
	}
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			headingColor.Print(line)
		case strings.HasPrefix(line, "+"):
			addColor.Print(line)
		case strings.HasPrefix(line, "-"):
			delColor.Print(line)
		default:
			fmt.Print(line)
		}
	}
}

func failure(err error, kind ledgererr.Kind) {
	if kind != 0 {
		errColor.Fprintf(os.Stderr, "%s: ", kind)
	} else {
		errColor.Fprint(os.Stderr, "error: ")
	}
	fmt.Fprintln(os.Stderr, err)
}
