package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"hive/hive"
	"hive/lib/component"
	"hive/lib/properties"
	_join "hive/pkg/join"
)

func init() {
	Command.AddCommand(&cobra.Command{
		Use:       "component [source|operator|sink|strategy]",
		Short:     "list hive sources, operators, sinks and join strategies.",
		Long:      `list hive sources, operators, sinks and join strategies with their properties.`,
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"source", "operator", "sink", "strategy"},
		Run: func(cmd *cobra.Command, args []string) {
			var defs map[string]hive.PropertiesDef

			switch args[0] {
			case "source":
				defs = component.ListSourceDef()
			case "operator":
				defs = component.ListOperatorDef()
			case "sink":
				defs = component.ListSinkDef()
			case "strategy":
				for _, name := range _join.Strategies() {
					fmt.Println(name)
				}
				return
			}

			names := make([]string, 0, len(defs))
			for name := range defs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s %s:\n%s\n", name, args[0], properties.RenderDef(defs[name]))
			}
		}})
}
