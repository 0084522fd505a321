// Package render draws one chart per allocation cluster.
//
// A Panel holds the normalized points of one cluster: x is seconds (or
// cycles relative to the first sample when no wall-clock range is known)
// and y is the offset from the lowest sampled address in GiB. Panels are
// rendered either as a dot scatter through go-chart or as a categorical
// heatmap where every bin takes the color of its most frequent category.
package render
