// Package z80 provides the Z80 instruction decoder.
//
// Opcodes are decomposed into the X, Y and Z bit fields (xxyyyzzz), the decoder dispatches
// on the prefix class first and then on these fields. The CB, ED and DD/FD prefixed
// instruction groups are supported, including the undocumented index register halves
// and the DD CB / FD CB forms that store their result in a register.
package z80
