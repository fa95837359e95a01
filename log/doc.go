/*
Package log provides global diagnostic output control across the whole
application. Logging comes in four levels: Silent, Major, Minor and Debug with
each level more detailed than the previous. Levels are inclusive, so, e.g., if
MinorLevel is set that implies MajorLevel logging.

All diagnostics go via this package so tests can capture them with SetOut().
Rendered query output is purposely *not* diagnostic output; it is written
directly to stdout by the renderer and never passes through here.
*/
package log
