// Package mapping provides the response-shape introspection and field-mapping
// evaluation engine behind the integration wizard.
//
// The package has no I/O and no UI dependencies. It operates on a fully
// decoded document (see [Decode]) and is safe to call concurrently as long as
// callers do not mutate the document during a call.
//
// # Components
//
//   - Path catalog: [EnumeratePaths] lists every addressable keyed location,
//     [PositionalLength] and [PositionalSamples] describe flat positional records.
//   - Format classifier: [LooksPositional] decides whether a payload is more
//     plausibly positional arrays than keyed records. It is advisory only.
//   - Value resolver: [Resolve] returns the value at an address, or reports it
//     absent. It never panics and never returns an error.
//   - Mapping evaluator: [Evaluate] applies a [Config] to a document and
//     produces either one flat record or a sequence of [ResolvedRecord].
//
// # Address Syntax
//
// Keyed addresses are rooted at "$":
//
//	$.data[0].name     key "data", element 0, key "name"
//	$.data[*]          the whole "data" array (terminates the walk)
//	data.name          the root sentinel is optional
//
// Positional addresses are base-10 non-negative integers ("0", "3").
//
// # Absent Values
//
// Resolution failures are never errors. A missing key, a wrong type or an
// out-of-range index all resolve to "absent", which the evaluator stores as a
// nil field value and which the presentation layer renders as a placeholder.
package mapping
