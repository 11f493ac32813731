package league

import "errors"

// ErrNoWeekBounds indicates the payload carried no usable start/end span for
// the requested week.
var ErrNoWeekBounds = errors.New("league: no week bounds in payload")
