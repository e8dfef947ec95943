package errors

import "errors"

var (
	ErrParse             = errors.New("feed is not well-formed XML")
	ErrStructure         = errors.New("root element must be <rss>")
	ErrWrite             = errors.New("feed could not be written")
	ErrUsage             = errors.New("not enough arguments")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
