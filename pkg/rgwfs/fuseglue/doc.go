// Package fuseglue presents an fhcache.Mount and its objstore.Store as a
// kernel-mounted filesystem via hanwen/go-fuse/v2, translating VFS calls
// into fhcache.Mount.LookupFH and pkg/rgwfs/ops adapter calls.
package fuseglue
