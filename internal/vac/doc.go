// Package vac implements the vector animation complex: a topological model
// of 2D vector drawings and their animation, structured as a graph of typed
// cells (vertices, edges, faces) organized in a grouping tree.
//
// Cells exist either at a single frame (key cells) or over an open frame
// range (inbetween cells), and reference each other through a bidirectional
// boundary/star incidence relation: b is in a's boundary exactly when a is in
// b's star.
//
// All structural mutation goes through Transact, which accumulates a Diff and
// emits it to listeners once per outermost transaction. Reading (Find,
// Closure, Star, cell accessors) needs no transaction.
package vac
