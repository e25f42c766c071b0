package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type importCmd struct {
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "append a wallet allocations CSV to the ledger" }
func (*importCmd) Usage() string {
	return `import [-file <path>]

  Parses the whole file, then appends every row in one batch. Defaults to the
  configured wallet allocations path.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "CSV file to import (default: configured wallet allocations path)")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening application: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	file := c.file
	if file == "" {
		file = a.Config.Allocation.WalletAllocationsPath
	}

	n, err := a.Ledger.ImportFile(ctx, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", file, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Imported %d rows from %s\n", n, file)
	return subcommands.ExitSuccess
}
