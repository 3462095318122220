package assets

import "errors"

var (
	// ErrDisposed is returned by every operation on a disposed cache.
	ErrDisposed = errors.New("assets: cache is disposed")
	// ErrEmptyName is returned when an operation is given an empty name.
	ErrEmptyName = errors.New("assets: empty asset name")
	// ErrNilAsset is returned when Load is given a nil value.
	ErrNilAsset = errors.New("assets: nil asset")
)

// ErrAssetNotFound is returned when neither the cache nor its source can
// produce the named asset
type ErrAssetNotFound struct {
	Name  string
	Cause error
}

func (e ErrAssetNotFound) Error() string {
	if e.Cause == nil {
		return "asset not found: " + e.Name
	}
	return "asset not found: " + e.Name + ": " + e.Cause.Error()
}

func (e ErrAssetNotFound) Unwrap() error {
	return e.Cause
}

// IsAssetNotFound checks if an error is an asset miss
func IsAssetNotFound(err error) bool {
	var e ErrAssetNotFound
	return errors.As(err, &e)
}
