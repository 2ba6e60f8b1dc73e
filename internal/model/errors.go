package model

import "errors"

// ErrNoItems reports that extraction produced nothing to analyze. It is the
// only per-run failure the analyzer surfaces; everything below it degrades.
var ErrNoItems = errors.New("no analyzable items extracted")
