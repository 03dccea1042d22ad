// Package driving defines the interfaces the core exposes to its surfaces
// (CLI, scheduler). The routing and request-validation layer consumes these;
// the core services implement them.
package driving
