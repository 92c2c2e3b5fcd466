// Package room stores the mapping between physical rooms and the IR
// blaster device assigned to each. Room-level operations resolve a room
// to its device here before anything is queued.
package room
