package registry

import "errors"

var errNoProviderAvailable = errors.New("registry: no provider available")
