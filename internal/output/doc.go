// Package output renders traversals for the protochain CLI.
//
// The package is organized around three concerns:
//
//   - Results (result.go): [Result] flattens an iterator's keys and the
//     per-level breakdown into a serializable value.
//
//   - Rendering (registry.go): pluggable formats via the [Registry], with
//     built-in text, json, yaml and table renderers.
//
//   - Writers (writer.go): output destinations via the [Writer] interface,
//     with [StreamWriter] and [FileWriter] implementations.
package output
