// Package ui implements the terminal user interface for the firmata CLI.
//
// Two presentation modes live here:
//
//   - The live pin monitor, a full-screen Bubble Tea program started with
//     RunMonitor. It subscribes to a running client and keeps a dashboard of
//     analog readings, digital port states, and board messages current as
//     reports stream in. Key presses toggle reporting without leaving the
//     screen.
//
//   - The Printer, for one-shot commands that want styled output without an
//     interactive program: a command header box, then a success or error
//     result box rendered with Lip Gloss.
//
// # Monitor Keys
//
//	a      toggle analog reporting
//	d      toggle digital reporting
//	?      expand/collapse help
//	q      quit
//
// # Layout
//
// Every full-screen view is wrapped in RenderAppContainer, which draws the
// application header (name, version, repository), the screen content, and a
// context-sensitive help footer inside one bordered panel sized from
// tea.WindowSizeMsg.
//
// # Logging Integration
//
// This package expects logging to be controlled via the FIRMATA_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Set FIRMATA_LOG_LEVEL to
// "debug", "info", "warn", or "error" to enable logging output; note that
// log lines will fight the monitor's alt-screen rendering, so the monitor is
// best run silent.
package ui
