//go:build linux

package explorer

import "golang.org/x/sys/unix"

// birthTime reads the creation time through statx, which not every filesystem fills in.
func birthTime(path string) (int64, bool) {
	var stx unix.Statx_t

	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx); err != nil {
		return 0, false
	}

	if stx.Mask&unix.STATX_BTIME == 0 {
		return 0, false
	}

	return stx.Btime.Sec, true
}
