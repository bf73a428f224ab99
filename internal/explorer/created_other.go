//go:build !linux && !darwin

package explorer

func birthTime(string) (int64, bool) {
	return 0, false
}
