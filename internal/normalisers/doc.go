// Package normalisers turns files added to the local index into plain text.
// Each format lives in its own subpackage; a Registry picks one by file extension
// and falls back to the plain-text normaliser.
package normalisers
