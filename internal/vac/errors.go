package vac

import "errors"

var (
	// ErrNilComplex is returned when a transaction is opened against a nil Complex.
	ErrNilComplex = errors.New("vac: nil complex")

	// ErrNotFound is returned when an operation references a node id that does
	// not exist in the complex.
	ErrNotFound = errors.New("vac: node not found")

	// ErrNotAChild is returned when an explicit sibling anchor does not belong
	// to the stated parent group.
	ErrNotAChild = errors.New("vac: sibling anchor is not a child of parent")

	// ErrNotAGroup is returned when a parent argument does not reference a group.
	ErrNotAGroup = errors.New("vac: node is not a group")

	// ErrCycleReparent is returned when a group would be moved into its own
	// descendant subtree.
	ErrCycleReparent = errors.New("vac: cannot move a group into its own descendant")

	// ErrDifferentComplex is returned when an operation mixes nodes owned by
	// different complexes.
	ErrDifferentComplex = errors.New("vac: nodes belong to different complexes")

	// ErrFrameMismatch is returned when key cells joined by a single operation
	// do not live at the same frame.
	ErrFrameMismatch = errors.New("vac: key cells are not at the same frame")

	// ErrBadCycle is returned when a halfedge sequence does not form a valid
	// cycle or path.
	ErrBadCycle = errors.New("vac: invalid cycle")

	// ErrRootRemoval is returned when an operation attempts to detach or
	// destroy the root group directly.
	ErrRootRemoval = errors.New("vac: cannot remove the root group")
)
