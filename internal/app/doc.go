// Package app contains the core application logic. It wires the build file
// loader, the generator and the graph encoder into generation passes,
// decoupled from any specific entrypoint like a CLI.
package app
