/*
Bridgegen generates the Go side of a bridge between Go and a foreign runtime (https://github.com/refaktor/bridgegen).

A bridge is described in a TOML or YAML file listing the shared types and functions, and which side implements each of them.
Bridgegen turns a description into a cgo file and a small C file. The foreign side links against the exported symbols and provides the ones declared.

Usage:

	bridgegen [-o dir] [-prefix p] [-v] <description file>...

Use cmd/bridgegen-init to create a starter description for the package in the current directory.

# Architecture pipeline (for developers)

Each element in the pipeline has distinct sub-packages that do a specific part. These are then "glued" together in [run].
 1. [config]: Parse user-supplied descriptions, merge their imports and validate them
 2. [ir]: The validated module: types and functions, tagged with the side implementing them
 3. [naming]: Symbol strings both sides agree on, and local identifiers
 4. [bridge]: Generate exported wrappers, foreign proxies and linked declarations, then assemble and format the output
*/
package main
