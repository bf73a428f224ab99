//go:build darwin

package explorer

import "golang.org/x/sys/unix"

func birthTime(path string) (int64, bool) {
	var st unix.Stat_t

	if err := unix.Lstat(path, &st); err != nil {
		return 0, false
	}

	return st.Btimespec.Sec, true
}
