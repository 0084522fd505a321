// Package mmap maps trace files read-only into memory.
//
// Traces are large, immutable and read front to back once, so the
// local blob store maps them instead of copying them through the heap:
//
//	m, err := mmap.Open("pact_trace.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	records, _ := m.Region(off, n)
//
// On platforms without mmap(2) the file is read into memory instead and
// Advise is a no-op.
package mmap
