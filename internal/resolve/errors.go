package resolve

import "errors"

var (
	// ErrNoReplacementID indicates the ID space is exhausted under the
	// current floor policy.
	ErrNoReplacementID = errors.New("resolve: no replacement id available")
	// ErrChoiceNotAllowed indicates the decider picked a side that may not be
	// renamed.
	ErrChoiceNotAllowed = errors.New("resolve: choice not allowed")
	// ErrReplacementInUse indicates an override replacement that is taken or
	// excluded.
	ErrReplacementInUse = errors.New("resolve: replacement id in use")
)
