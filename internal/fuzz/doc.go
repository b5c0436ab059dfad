// Package fuzztests holds fuzz harnesses for the analysis pipeline
// (source -> lexer -> parser -> sema -> model). They look for panics and
// hangs on arbitrary input; clean parses are also checked against the span
// invariants of testkit.
package fuzztests
