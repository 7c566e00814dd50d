// Command mediacodec is the cobra-based CLI front-end over this
// module's JPEG codec, resize, and rotate packages: decode, encode,
// resize, rotate, and info subcommands.
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
