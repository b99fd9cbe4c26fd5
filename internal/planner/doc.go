// Package planner holds the pure arithmetic behind segmentation: how many
// parts a file needs, the per-part byte budget, how the budget shrinks after
// an oversize output, and where the next segment starts.
//
// Nothing here performs I/O. The segment package drives the loop and feeds
// measured sizes and durations back through these functions.
package planner
