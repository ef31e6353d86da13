// Package app provides the orchestration layer for the picket monitor.
//
// # Overview
//
// This package wires together configuration, the event source, the poll
// monitor, state management, and the presentation surfaces to create the
// complete picket experience. It serves as the composition root where all
// dependencies are initialized and connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load configuration from ~/.config/picket/config.toml (or the -config
//     override), including the classification rule table
//  2. Configure diagnostic logging on stderr and the output color mode
//  3. Construct the selected event source adapter through the registry
//  4. Create the shared state.Store for UI and stats coordination
//  5. Launch the monitor loop, and the stats reporter when enabled
//  6. Stream styled blocks to stdout, or hand the terminal to the watch UI
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      Read config + rule table
//	       ├─────> source.New()       Construct the event source
//	       ├─────> state.NewStore()   Shared state container
//	       ├─────> monitor.New()      Poll/classify/emit loop
//	       └─────> ui.Run()           Watch mode only (blocks)
//
//	Monitor Loop:
//	┌─────────────────────────────────────────┐
//	│ monitor.Run() goroutine                 │
//	│  ├─> Source.FetchSince(watermark)       │
//	│  ├─> RuleSet.Classify(record)           │
//	│  ├─> Renderer.Emit()  (stream mode)     │
//	│  └─> store.Append()   (atomic)          │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// The app package distinguishes between fatal and recoverable errors:
//
// Fatal errors (returned from Run):
//   - Configuration file present but invalid
//   - Unknown source type or unusable source parameters
//   - Writing a record block to stdout failed
//
// Recoverable errors (logged, polling continues):
//   - Periodic fetch failures while the source is unreachable
//   - Malformed responses from the source
//
// A missing config file is not an error; picket runs on defaults so that
// `picket` with no setup at all tails the default source.
//
// # Presentation
//
// Stream mode writes one styled block per record to stdout and keeps all
// diagnostics on stderr, so the record stream stays pipeable. Watch mode
// runs the monitor in the background with the store as its only sink and
// gives the terminal to the Bubble Tea UI; quitting the UI stops the
// monitor, and a dying monitor stops the UI.
package app
