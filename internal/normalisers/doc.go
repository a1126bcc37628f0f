// Package normalisers extracts plain text from raw corpus files.
// Format-specific normalisers live in subpackages and are dispatched by
// MIME type through a Registry.
package normalisers
