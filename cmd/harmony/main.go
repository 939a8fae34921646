// Command harmony drives C++20 named-module builds: scan, resolve,
// freshness-filter, schedule, and link. Grounded on
// _examples/open-platform-model-cli's cmd/opm layout (one cobra root plus
// one file per subcommand) and _examples/sunholo-data-ailang's cmd/ailang
// main.go for exit-code handling.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
