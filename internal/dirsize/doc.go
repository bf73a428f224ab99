// Package dirsize computes the total size of a directory tree up to a maximum depth.
//
// Every directory level fans out one goroutine per entry and joins them before
// summing. The first failure aborts the whole computation; directories below
// the depth bound are not read and contribute nothing.
package dirsize
