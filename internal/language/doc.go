// Package language provides language code normalization and display names.
//
// A small table covers the languages autosub users translate into most often
// (including the Turkish default target); anything else falls back to BCP 47
// parsing from golang.org/x/text.
package language
