package gfx

import "errors"

// ErrResourceLoad is wrapped by every failure to load or compile a GPU resource.
var ErrResourceLoad = errors.New("resource load failed")
