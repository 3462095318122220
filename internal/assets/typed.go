package assets

import (
	"fmt"

	"github.com/conduit-lang/assets/internal/capability"
)

// Get is the typed form of Cache.Get.
func Get[T any](c *Cache, name string) (T, error) {
	var zero T
	tag := capability.TagOf[T]()

	v, err := c.Get(name, tag)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("assets: %s is cached as %T, not %s", name, v, tag)
	}
	return t, nil
}

// Unload is the typed form of Cache.Unload.
func Unload[T any](c *Cache, name string) error {
	return c.Unload(name, capability.TagOf[T]())
}
