// Package layout provides the layout engine for GoTypst.
//
// This package is a Go translation of typst-layout from the original Typst
// compiler. It converts abstract document content into positioned frames
// ready for rendering.
package layout
