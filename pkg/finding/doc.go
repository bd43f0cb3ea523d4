// Package finding defines the raw reconnaissance data model shared by the
// scan client, the analysis engine, and the report renderer.
//
// A Finding is one atomic fact returned by the scanning service (an email
// address, an IP, a server banner). Findings are immutable: the pipeline
// groups and projects them but never mutates the caller's list.
//
// The package also carries the fixed type-label tables that decide which raw
// types feed which intelligence view. Extending a view means editing the
// table, not adding dispatch.
package finding
