// Package driven defines the interfaces the core depends on: persistence
// stores, the payload fetcher and the audit sink. Adapters implement these;
// services consume them.
package driven
