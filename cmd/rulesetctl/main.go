// Command rulesetctl inspects rulesets offline: it validates them, lists
// their divisions, renders editing masks, merges reimported metadata and
// exports UI descriptions.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rulesetctl:", err)
		os.Exit(1)
	}
}
