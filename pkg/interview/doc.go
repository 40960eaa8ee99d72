// Package interview owns the answer store and section cursor of one
// interview. Interview.Assign is the only way to change stored answers;
// navigation never touches them. Forward navigation is gated on the current
// section's required fields, while backward moves and jumps are not.
//
// All operations serialize on one mutex, so assignments arriving from voice
// tool calls, transcribed utterances and keystrokes are applied in arrival
// order with last-writer-wins per field.
package interview
