// Package core provides the tabular view pipeline behind the dashboard.
//
// This package contains all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the CLI and tests without
// modification.
//
// # Pipeline
//
// Every interaction replays the same ordered stages:
//
//  1. [Load] parses an uploaded file (.csv or .xlsx) into a [Dataset]
//  2. [Apply] runs the categorical filter, the numeric range filter and the
//     sort described by a [Selection], producing the View
//  3. [Project] drops rows missing the chosen axes (the Chart Input) and
//     builds a [RenderCommand] for one of the five [ChartKind] values
//  4. [Export] serializes the View back to comma-separated text
//
// The View is never patched incrementally: it is recomputed from the loaded
// Dataset and the current Selection each time a selection changes.
//
// # Missing values
//
// Every [Cell] carries a Valid flag. A missing cell is distinguishable from
// an empty string and from zero in both numeric and text columns.
//
// # Sessions
//
// A [Session] owns one Dataset and its Selection. Sessions live in a
// [Sessions] store keyed by UUID and never share state. Loading a new file
// into a session discards the previous Dataset and resets the Selection.
//
// # Error Handling
//
// The pipeline returns three typed errors:
//
//   - [LoadError]: malformed or unsupported upload; the request halts
//   - [ConfigurationError]: a selection references a missing or mistyped column
//   - [ChartError]: not enough data for the chosen chart; shown as a warning
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (size, type, empty, malformed)
//   - CFG001-CFG005: Selection errors (unknown column, wrong type, chart kind, range)
//   - CHT001-CHT002: Chart warnings (numeric columns, no rows)
//   - SES001-SES002: Session errors (expired, capacity)
//   - UPL002-UPL005: Upload errors (busy, cancelled, timeout)
package core
