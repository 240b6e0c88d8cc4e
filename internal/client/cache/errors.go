package cache

import "errors"

var ErrEmptyKey = errors.New("cache key is empty")
