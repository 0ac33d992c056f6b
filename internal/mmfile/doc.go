// Package mmfile opens table files read-only. Files at or above MapThreshold
// are memory mapped where the platform allows it; smaller ones, which is most
// tables, are read into memory.
package mmfile
