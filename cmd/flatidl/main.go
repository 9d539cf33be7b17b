// flatidl - schema+object parser demo
//
// Usage:
//
//	flatidl [file]   Parse a schema+object source and print buffer stats
//	flatidl version  Print version info
//
// If no file is given, reads from stdin. This is a thin demonstration of
// the idl package's Parse entrypoint, not a code generator or a wire
// front-end: it does not decode the buffer back to text.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/flatidl/flatidl/idl"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "-v", "--version":
			fmt.Printf("flatidl %s\n", version)
			return
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}

	var input io.Reader = os.Stdin
	if len(os.Args) > 1 && os.Args[1] != "-" {
		f, err := os.Open(os.Args[1])
		if err != nil {
			fatal("open file: %v", err)
		}
		defer f.Close()
		input = f
	}

	data, err := io.ReadAll(input)
	if err != nil {
		fatal("read input: %v", err)
	}

	r, err := idl.Parse(string(data))
	if err != nil {
		fatal("parse: %v", err)
	}

	fmt.Printf("structs:   %d\n", len(r.Structs))
	fmt.Printf("enums:     %d\n", len(r.Enums))
	if r.RootStructDef != nil {
		fmt.Printf("root type: %s\n", r.RootStructDef.Name)
	}
	if len(r.Buffer) > 0 {
		fmt.Printf("buffer:    %d bytes\n", len(r.Buffer))
		fmt.Printf("fingerprint: %s\n", idl.SchemaFingerprint(string(data)))
	} else {
		fmt.Printf("buffer:    none (no root object literal in input)\n")
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `flatidl - schema+object parser demo

Usage:
  flatidl [file]   Parse a schema+object source and print buffer stats
  flatidl version  Print version info

If no file is given, reads from stdin.

Example:
  cat monster.fbs | flatidl
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "flatidl: "+format+"\n", args...)
	os.Exit(1)
}
