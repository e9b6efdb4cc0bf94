// Package formats reads and writes elevdump terrain dumps.
//
// An elevdump is a text file whose first line is DumpHeader. Every other
// non-blank line is one Entry: a square patch of texture ids and heights
// anchored at a node cell inside a 128x128 page.
package formats
