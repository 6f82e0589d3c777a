//go:build !cgo

package cache

// NewKuzuStore is unavailable without CGO.
func NewKuzuStore(path, session string) (Store, error) {
	return nil, ErrUnavailable
}
