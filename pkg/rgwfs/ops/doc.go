// Package ops implements the operation adapters (C7): one type per
// filesystem verb, each translating a FileHandle-level request into calls
// against an objstore.Store and the owning fhcache.Mount. These mirror
// original_source's RGW*Request classes one-to-one, adapted from the
// HTTP/S3 req_state shape to a direct Store call since the HTTP layer
// itself is out of scope.
package ops
