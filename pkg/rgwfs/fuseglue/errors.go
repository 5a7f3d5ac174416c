package fuseglue

import (
	"errors"
	"syscall"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
)

// toErrno maps the fhcache/objstore error taxonomy onto the syscall.Errno
// values the kernel VFS expects back from an fs.Node method.
func toErrno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, fhcache.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, fhcache.ErrAlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, fhcache.ErrPermissionDenied):
		return syscall.EPERM
	case errors.Is(err, fhcache.ErrInvalidArgument):
		return syscall.EINVAL
	case errors.Is(err, fhcache.ErrPathTooDeep):
		return syscall.ENAMETOOLONG
	case errors.Is(err, fhcache.ErrOutOfHandles):
		return syscall.ENOSPC
	case errors.Is(err, fhcache.ErrTooLarge):
		return syscall.EFBIG
	case errors.Is(err, fhcache.ErrUserSuspended):
		return syscall.EPERM
	case errors.Is(err, fhcache.ErrFatalInvariant):
		return syscall.EIO
	default:
		return syscall.EIO
	}
}
