// Command docgen runs the draft transforms against local JSON files, without
// a Zeebe gateway.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
