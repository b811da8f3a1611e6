//go:build !windows

package capture

// newPlatformSource returns an error on platforms without DXGI.
func newPlatformSource(cfg Config) (Source, error) {
	return nil, ErrNotSupported
}

func primaryDisplaySize() (int, int, error) {
	return 0, 0, ErrNotSupported
}
