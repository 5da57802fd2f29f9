// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import "fmt"

// A ParseError indicates that the input text is not valid Python.
// No output is produced.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("parsing source: %v", e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// An EncodeError indicates that a literal value cannot be represented
// by the dunder encoding scheme, such as a character outside the valid
// code point range.
type EncodeError struct {
	Value string // display form of the offending value
	Msg   string
}

func newEncodeError(value interface{}, f string, args ...interface{}) *EncodeError {
	return &EncodeError{
		Value: fmt.Sprint(value),
		Msg:   fmt.Sprintf(f, args...),
	}
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode %q: %s", e.Value, e.Msg)
}

// An UnsupportedError indicates a syntax construct the serializer has
// no rendering rule for. The rewriter itself passes unknown constructs
// through untouched; only rendering fails explicitly, so the tool never
// emits a misshapen program.
type UnsupportedError struct {
	Construct string
}

func newUnsupportedError(node interface{}) *UnsupportedError {
	return &UnsupportedError{Construct: fmt.Sprintf("%T", node)}
}

func (e *UnsupportedError) Error() string {
	return "unsupported construct: " + e.Construct
}
