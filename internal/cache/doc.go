// Package cache keeps recently read blob blocks in memory.
//
// Remote stores serve every ReadAt with a ranged GET. The line-oriented
// log parsers issue many small reads, so blocks are cached and shared by
// all readers of the same blob. Cached bytes count against the resource
// controller's memory limit when one is configured.
package cache
