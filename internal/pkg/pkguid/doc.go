// Package pkguid provides helpers for generating unique identifiers.
//
// Callers depend on StringID rather than a concrete strategy. UUID (v7) is
// used for record and correlation IDs, Snowflake for time ordered event IDs.
package pkguid
