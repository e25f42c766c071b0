package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type computeCmd struct {
	raw bool
}

func (*computeCmd) Name() string     { return "compute" }
func (*computeCmd) Synopsis() string { return "fetch quotes, compute and record the allocation" }
func (*computeCmd) Usage() string {
	return `compute [-raw]

  Runs one allocation cycle and prints the report.
`
}

func (c *computeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print markdown without terminal styling")
}

func (c *computeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening application: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	report, err := a.Allocations.ComputeAndRecord(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing allocation: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := printMarkdown(os.Stdout, renderReport("Allocation", report), c.raw); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type latestCmd struct {
	raw bool
}

func (*latestCmd) Name() string     { return "latest" }
func (*latestCmd) Synopsis() string { return "print the last recorded allocation" }
func (*latestCmd) Usage() string {
	return `latest [-raw]

  Prints the most recent allocation record without contacting the provider.
`
}

func (c *latestCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print markdown without terminal styling")
}

func (c *latestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening application: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	rec, report, err := a.Allocations.Latest(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading latest allocation: %v\n", err)
		return subcommands.ExitFailure
	}

	title := fmt.Sprintf("Allocation at %s", rec.ComputedAt)
	if err := printMarkdown(os.Stdout, renderReport(title, report), c.raw); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
