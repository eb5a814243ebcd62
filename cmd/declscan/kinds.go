package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/declscan/internal/ast"
)

type kindReport struct {
	Kind    ast.Kind `json:"kind"`
	RawKind []string `json:"raw_kinds"`
}

// kindsCommand prints the classification table, one kind per line
func kindsCommand(c *cli.Context) error {
	var kinds []kindReport
	for _, k := range ast.Kinds() {
		if k == ast.KindUnknown {
			continue
		}
		kinds = append(kinds, kindReport{Kind: k, RawKind: ast.RawKindsFor(k)})
	}

	if c.Bool("json") {
		data, err := json.MarshalIndent(kinds, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	}

	for _, k := range kinds {
		fmt.Fprintf(c.App.Writer, "%-16s %s\n", k.Kind, strings.Join(k.RawKind, ", "))
	}
	return nil
}
