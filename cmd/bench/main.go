// bench - parse throughput runner
//
// Runs idl.Parse over a small corpus of schema+object cases repeatedly and
// reports parse time and buffer size per case.
//
// Output: CSV and markdown summary.
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/flatidl/flatidl/idl"
)

type caseResult struct {
	Name       string
	Iterations int
	TotalNS    int64
	NSPerOp    int64
	BufferSize int
}

type benchCase struct {
	Name   string
	Source string
}

func main() {
	cases := builtinCases()
	iterations := 2000

	fmt.Fprintf(os.Stderr, "flatidl bench runner\n")
	fmt.Fprintf(os.Stderr, "=====================\n")
	fmt.Fprintf(os.Stderr, "cases: %d, iterations each: %d\n\n", len(cases), iterations)

	var results []caseResult
	for _, c := range cases {
		r, err := idl.Parse(c.Source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", c.Name, err)
			continue
		}

		start := time.Now()
		for i := 0; i < iterations; i++ {
			if _, err := idl.Parse(c.Source); err != nil {
				fmt.Fprintf(os.Stderr, "skip %s: %v\n", c.Name, err)
				break
			}
		}
		elapsed := time.Since(start)

		results = append(results, caseResult{
			Name:       c.Name,
			Iterations: iterations,
			TotalNS:    elapsed.Nanoseconds(),
			NSPerOp:    elapsed.Nanoseconds() / int64(iterations),
			BufferSize: len(r.Buffer),
		})
	}

	csvPath := "bench_results.csv"
	if f, err := os.Create(csvPath); err == nil {
		writeCSV(f, results)
		f.Close()
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", csvPath)
	}

	mdPath := "BENCH.md"
	if f, err := os.Create(mdPath); err == nil {
		writeMarkdown(f, results)
		f.Close()
		fmt.Fprintf(os.Stderr, "Markdown written to: %s\n", mdPath)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	for _, r := range results {
		fmt.Printf("%-24s %8d ns/op   %6d bytes\n", r.Name, r.NSPerOp, r.BufferSize)
	}
}

func builtinCases() []benchCase {
	return []benchCase{
		{
			Name: "table-with-default",
			Source: `
				table T { a:int = 5; b:int; }
				root_type T;
				{b:7}
			`,
		},
		{
			Name: "monster-vec3-inventory",
			Source: `
				struct Vec3 { x:float; y:float; z:float; }
				table Monster {
				  pos: Vec3;
				  hp: short = 100;
				  name: string;
				  inventory: [ubyte];
				}
				root_type Monster;
				{ pos: {x:1, y:2, z:3}, name: "Orc", inventory: [0,1,2,3,4] }
			`,
		},
		{
			Name: "union-discriminant",
			Source: `
				table A {}
				table B {}
				union U { A, B }
				table R { u:U; }
				root_type R;
				{u_type:B, u:{}}
			`,
		},
		{
			Name: "bit-flags-enum",
			Source: `
				enum E:ubyte (bit_flags) { R, G, B }
				table T { c:E=R; }
				root_type T;
				{c:"R G"}
			`,
		},
	}
}

func writeCSV(w *os.File, results []caseResult) {
	fmt.Fprintln(w, "name,iterations,ns_per_op,buffer_bytes")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%d\n", r.Name, r.Iterations, r.NSPerOp, r.BufferSize)
	}
}

func writeMarkdown(w *os.File, results []caseResult) {
	fmt.Fprintf(w, "# Parse Benchmark Results\n\n")
	fmt.Fprintf(w, "| Case | ns/op | Buffer bytes |\n")
	fmt.Fprintf(w, "|------|-------|---------------|\n")

	sorted := make([]caseResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].NSPerOp < sorted[j].NSPerOp })

	for _, r := range sorted {
		fmt.Fprintf(w, "| %s | %d | %d |\n", r.Name, r.NSPerOp, r.BufferSize)
	}
}
