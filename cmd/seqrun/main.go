// Command seqrun runs a sequence described by a YAML script.
package main

import "os"

func main() {
	os.Exit(run(ParseFlags(os.Args[1:])))
}
