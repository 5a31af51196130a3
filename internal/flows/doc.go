// Package flows contains the account lifecycle orchestration. Each Run*
// function is a pure coordination routine over a Deps struct of function
// dependencies the root engine wires once at build time; flows own the
// ordering and failure semantics of an operation while the engine owns
// configuration, conversions, and dependency construction.
package flows
