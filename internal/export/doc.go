// Package export writes finished layouts out of the terminal.
//
// [ToDOT] produces a Graphviz document with every node pinned at its layout
// position and [RenderSVG] renders it in process through go-graphviz using
// the neato engine. [PlainSVG] skips Graphviz and draws the positions as is.
package export
