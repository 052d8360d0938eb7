package press

import "errors"

// Failure classes for a single compression attempt. All are recoverable at
// the call site: the operation is abandoned for that image only and the
// user may retry by changing settings or re-invoking compression.
var (
	// ErrDecode means the source bytes could not be decoded as an image.
	ErrDecode = errors.New("decode image")

	// ErrRender means the output surface (cache file) could not be acquired.
	ErrRender = errors.New("prepare output")

	// ErrEncode means encoding the rendered image to the target format failed.
	ErrEncode = errors.New("encode image")

	// ErrNoSource means neither a readable file nor a usable URL reference
	// resolved for the record.
	ErrNoSource = errors.New("no source available")
)
