// Package pipeline turns scan results into output lines. It picks the
// result mode (count table, score table, or positional lines), pulls
// rows from either the canonical scanner or the fast backend, and hands
// finished lines to an emit callback one at a time.
//
// The only contracts to implement are Engine and AltEngine. This keeps
// the dispatcher swappable and testable.
package pipeline
