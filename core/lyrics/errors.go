package lyrics

import "errors"

var (
	// ErrNoTimedLines is returned by Parse when the text holds no usable time tag.
	ErrNoTimedLines = errors.New("no timed lyric lines found")

	// ErrInvalidTimestamp marks a time tag whose content is not "minutes:seconds".
	// Parse drops such tags instead of failing.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
