// Command genesys checks Yu-Gi-Oh! decks against the Genesys point list and
// converts between ydke codes, YDK files and share tokens.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
