// Package monitor is the interactive side of tmon: a menu of monitors and
// the panels that chart them.
//
// The Model follows the usual Bubble Tea split. The menu lists one entry per
// monitor; choosing one builds a fresh Panel and starts a collection loop:
//
//  1. collectCmd calls Panel.Collect off the update loop
//  2. readingMsg brings the Reading back and Update hands it to Panel.Apply
//  3. tickCmd waits out the rest of the interval, then tickMsg starts over
//
// Every opened panel gets a new generation number. Messages carry the
// generation they were issued for, so readings and ticks that arrive after
// the user has left a panel are dropped instead of leaking into the next one.
//
// Panels own their history. A TimeSeries is a fixed-width, zero-filled window
// that scrolls one column per tick; RateTracker turns cumulative counters
// (network bytes, per-process I/O) into per-second rates and forgets entities
// that stop reporting. Alerting lives in AlertGate, which rings the terminal
// bell when a percentage crosses the configured threshold.
//
// Keys:
//
//	1-6       open a monitor (menu)
//	q         quit (menu)
//	any key   back to the menu (panel)
//	ctrl+c    exit from anywhere
package monitor
