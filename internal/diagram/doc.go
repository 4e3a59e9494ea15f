// Package diagram is the interactive node model behind the classification
// canvas.
//
// A Node renders one classification domain with its classes and, when the
// shared VisibilityStore says so, its themes. Nodes resize inside a fixed
// floor, recolor locally, and expose eight identity-bearing anchors that
// edges attach to. Anchor identities never change for the life of a node;
// only their positions follow the node's geometry.
//
// Everything here runs on the caller's update loop. The one piece of shared
// state, the visibility flag, has a single writer and is safe to read from
// any goroutine.
package diagram
