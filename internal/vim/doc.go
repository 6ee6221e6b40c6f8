// Package vim implements the Normal-mode command grammar: a token-stream
// parser that turns a Vim command string into a sequence of Commands, a
// table of motions/operators/text-objects, a register file, and an
// Interpreter that applies parsed Commands to an internal/vibuf.Buffer.
//
// There is no terminal here. cmd/vicut and internal/script both produce
// a plain string (the Vim command argument of -c/-m/cut/move); Tokenize
// turns it into a rune stream with <esc> and <cr> collapsed to sentinel
// runes, and Parser.Parse drives its state machine one token at a time,
// exactly as the teacher's key.Event-driven parser does one keypress at
// a time.
package vim
