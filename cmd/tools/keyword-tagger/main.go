// cmd/tools/keyword-tagger/main.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"travelease/internal/catalog"
)

func main() {
	in := flag.String("in", "", "Experiences CSV to tag (required)")
	out := flag.String("out", "", "Where to write the tagged CSV (default: stdout)")
	inplace := flag.Bool("inplace", false, "Overwrite --in with the tagged CSV")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "Error: --in is required.")
		flag.Usage()
		os.Exit(1)
	}
	if *inplace && *out != "" {
		fmt.Fprintln(os.Stderr, "Error: --out and --inplace are mutually exclusive.")
		os.Exit(1)
	}

	rows, err := run(*in, *out, *inplace, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Tagged %d experiences\n", rows)
}

func run(inPath, outPath string, inplace bool, stdout io.Writer) (int, error) {
	src, err := os.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	// Buffer the whole result so a failed run never truncates the target.
	var buf bytes.Buffer
	rows, err := catalog.AddKeywords(src, &buf)
	if err != nil {
		return rows, err
	}

	target := outPath
	if inplace {
		target = inPath
	}
	if target == "" {
		_, err := buf.WriteTo(stdout)
		return rows, err
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return rows, fmt.Errorf("write output: %w", err)
	}
	return rows, nil
}
