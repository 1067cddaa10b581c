// refportfolio selects research outputs for a REF submission and keeps the
// stored risk and portfolio scores current.
//
// Usage:
//
//	refportfolio load --file dataset.yaml
//	refportfolio optimize [--submission ID] [--strategy S] [--max-risk F] [--min-quality F]
//	refportfolio compare [--submission ID]
//	refportfolio scenarios [--file scenarios.yaml]
//	refportfolio recalc [--auto-timeline] [--output-id ID] [--submission-id ID]
//	refportfolio readiness --submission ID [--save]
//	refportfolio risk [--output-id ID]
//	refportfolio schedule
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
