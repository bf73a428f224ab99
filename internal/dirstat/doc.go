// Package dirstat produces a usage report for a directory tree.
//
// It walks the tree with fastwalk, groups file sizes by extension and keeps
// the largest files, or the largest directories in directory mode.
package dirstat
