// Package normalisers provides implementations of the Normaliser interface
// for the supported document formats, and the Registry that dispatches a
// raw document to the right one.
//
// Dispatch is by file extension first, then MIME type. When several
// normalisers match, the one with the highest Priority wins.
package normalisers
