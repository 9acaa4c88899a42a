// Package repl implements the interactive conversation loop: print a prompt,
// read a line, route it, print the answer, repeat. Turns never overlap; the
// next line is only read after the previous answer is printed.
package repl
