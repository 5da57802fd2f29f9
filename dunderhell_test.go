// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// Each testdata archive holds the input program as in.py and the
// expected rewrite as out.py.
func TestRun(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no test cases")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			var in, want string
			for _, f := range ar.Files {
				switch f.Name {
				case "in.py":
					in = string(f.Data)
				case "out.py":
					want = string(f.Data)
				default:
					t.Fatalf("unexpected file %s in archive", f.Name)
				}
			}
			if in == "" || want == "" {
				t.Fatal("archive must contain in.py and out.py")
			}

			got, err := run("in.py", in, false)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("have:\n%s", got)
				t.Errorf("want:\n%s", want)
			}

			checkNoPlainLiterals(t, got)

			// Same input, same output, every time.
			again, err := run("in.py", in, false)
			if err != nil {
				t.Fatal(err)
			}
			if again != got {
				t.Errorf("second run differs from first:\n%s", again)
			}
		})
	}
}

var literalRE = regexp.MustCompile(`[0-9]|'|"`)

// checkNoPlainLiterals verifies the rewrite left no digit or quote
// behind; everything must come from dunder expressions.
func checkNoPlainLiterals(t *testing.T, src string) {
	t.Helper()
	for i, line := range strings.Split(src, "\n") {
		if m := literalRE.FindString(line); m != "" {
			t.Errorf("line %d still contains literal %q: %s", i+1, m, line)
		}
	}
}

func TestRunDiff(t *testing.T) {
	out, err := run("x.py", "print(1)\n", true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "--- x.py") || !strings.Contains(out, "-print(1)") {
		t.Errorf("diff output missing headers or removal line:\n%s", out)
	}
}

func TestRunParseError(t *testing.T) {
	_, err := run("bad.py", "def f(:\n", false)
	if err == nil {
		t.Fatal("expected error for invalid syntax")
	}
	if !strings.Contains(err.Error(), "bad.py") {
		t.Errorf("error does not name the file: %v", err)
	}
}
