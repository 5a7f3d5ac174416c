// Package sessionmap tracks per-client session lifecycle state: which
// state a client's connection is in, the inode number ranges it has been
// granted for new files, and which request ids it has already applied.
package sessionmap
