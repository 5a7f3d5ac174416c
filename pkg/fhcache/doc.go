// Package fhcache implements the handle cache and namespace layer: a
// sharded, latch-protected index of FileHandles backed by an LRU lane set
// for reclaim under memory pressure, and a Mount type tying them together
// as the root of one filesystem presentation.
package fhcache
