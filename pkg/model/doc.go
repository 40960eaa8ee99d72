// Package model defines the canonical interview schema: ordered sections, each
// holding an ordered list of field descriptors. The schema is configuration
// data; it is built once per session and treated as immutable afterwards.
// Every other package reads field identity, type and required flags from
// these types and never creates field ids of its own.
package model
