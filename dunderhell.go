// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"dunderhell/diff"
	"dunderhell/dunder"
)

var (
	showDiff = flag.Bool("diff", false, "show a diff of the rewrite instead of printing the output")
	output   = flag.String("o", "", "write the output to `file` instead of standard output")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: dunderhell [-diff] [-o file] program.py\n")
	os.Exit(2)
}

func main() {
	log.SetPrefix("dunderhell: ")
	log.SetFlags(0)

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}
	file := flag.Arg(0)

	src, err := os.ReadFile(file)
	if err != nil {
		log.Fatal(err)
	}

	out, err := run(file, string(src), *showDiff)
	if err != nil {
		log.Fatal(err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out), 0o666); err != nil {
			log.Fatal(err)
		}
		return
	}
	os.Stdout.WriteString(out)
}

// run translates src and returns the text to print: the rewritten
// program, or a unified diff against the original when asked. Nothing
// is returned on error, so a failed run never emits partial output.
func run(name, src string, showDiff bool) (string, error) {
	out, err := dunder.Translate(src)
	if err != nil {
		return "", fmt.Errorf("translating %s: %w", name, err)
	}

	if showDiff {
		d, err := diff.Diff(name, []byte(src), name+" (dunderified)", []byte(out))
		if err != nil {
			return "", err
		}
		return string(d), nil
	}
	return out, nil
}
