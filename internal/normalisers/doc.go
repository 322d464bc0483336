// Package normalisers converts requirements documents into plain text.
// Each normaliser knows how to extract text from specific MIME types;
// the Registry dispatches between them.
package normalisers
