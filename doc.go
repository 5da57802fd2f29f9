// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Dunderhell rewrites Python programs into dunders.
//
// Usage:
//
//	dunderhell [-diff] [-o file] program.py
//
// Dunderhell reads the named Python program and prints an equivalent
// program whose literals, operators, and built-in references have all
// been replaced with double-underscore attribute access. For example:
//
//	$ cat hi.py
//	print(1)
//	$ dunderhell hi.py | python3 -
//	1
//
// The rewritten program contains no digits and no quoted text. Numbers
// are built from the length of the module's own name, so
//
//	print(2 + 2)
//
// becomes (abbreviated)
//
//	__builtins__.__getattribute__(__chr__(...))(
//	    __name__.__len__().__floordiv__(__name__.__len__()).__add__(...))
//
// Strings are rebuilt character by character through a __chr__ alias
// that the output program resolves out of __builtins__ at run time, and
// bare built-in names like print are fetched the same way, so the text
// "print" appears nowhere in the output. Variables defined by the
// program are renamed to dunders as well: total becomes __total__.
//
// The -diff flag prints a unified diff of the original and rewritten
// program instead of the program itself. The -o flag writes the output
// to a file instead of standard output.
//
// Dunderhell exits non-zero without producing output if the input does
// not parse or if a literal cannot be encoded.
//
// The output assumes it will run as a script (module name "__main__",
// whose length seeds the number encoding) with the standard builtins
// module in place. Constructs that have no dunder spelling (is, is not,
// not, and, or, del, and the statement keywords) are left as they are;
// dunderhell makes programs unreadable, not unparseable.
package main
