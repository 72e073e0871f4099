package main

import (
	_c "context"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"hive/lib/runtime"
)

func init() {
	Command.AddCommand(&cobra.Command{
		Use:   "run [config]",
		Short: "run sources, operators and sinks.",
		Long:  `run the sources, operators and sinks described by the config file until a signal arrives.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			configFilePath := args[0]
			ext := path.Ext(configFilePath)
			r := runtime.New(_c.Background(), strings.TrimSuffix(path.Base(configFilePath), ext), strings.TrimPrefix(ext, "."), path.Dir(configFilePath))
			r.Run()
		},
	})
}
