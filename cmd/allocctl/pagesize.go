package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/alloc"
)

var pagesizeCmd = &cobra.Command{
	Use:   "pagesize",
	Short: "Print the system page granularity",
	Long: `The pagesize command prints the page size that virtual and virtual-stack
allocators round their pages and commit steps to.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ps := alloc.PageSize()
		if jsonOut {
			return printJSON(map[string]any{"page_size": int64(ps), "human": ps.String()})
		}
		printInfo("%d (%s)\n", int64(ps), ps)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pagesizeCmd)
}
