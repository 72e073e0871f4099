package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "hive/lib"
)

var Command = &cobra.Command{
	Use:   "hive",
	Short: "windowed temporal join over rdf streams.",
	Long:  `hive buffers rdf observations of two streams in sliding windows and joins them.`,
}

func main() {
	if err := Command.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
