package drive

import "errors"

// ErrEnumerationFailed is the sentinel backing spec §6's EnumerationFailed.
var ErrEnumerationFailed = errors.New("drive: enumeration failed")

var errUnsupportedPlatform = errors.New("drive: enumeration unsupported on this platform")
