// Package dateparse turns natural language date and time phrases such as
// "tomorrow at 5pm", "Oct 25, 2026 3:00 PM" or "the 25th at 3pm" into
// absolute times.
//
// Calendar dates are matched against a fixed set of layouts. Everything else
// goes through github.com/olebedev/when using its English and common rule
// sets, and is only accepted when the match spans the whole phrase. All
// phrases are evaluated in a configured time zone.
package dateparse
