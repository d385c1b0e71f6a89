// Package watch re-runs a traversal whenever its graph file changes. It
// monitors the files' directories, debounces rapid events, and reports how
// the contributed properties changed between consecutive runs.
package watch
