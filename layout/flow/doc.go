// Package flow implements the flow layout core of the typesetting engine:
// turning a style-resolved sequence of block-level elements into a stack of
// prepared children (Collection) and packing those children into a region,
// one region at a time, with widow/orphan prevention, sticky adjacency,
// weak-spacing collapse, column breaks, fractional spacing, and spill
// handoff to the next region (Distribution). It also defers paragraph line
// breaking when sidebar cutouts are active, so lines vary in width as they
// pass alongside a wrap or masthead.
//
// The paragraph line breaker, block body layout, page composition above
// flow, introspection, and style resolution are external collaborators
// reached through the interfaces in collaborators.go; this package never
// implements them directly.
package flow
