package download

import "errors"

// ErrNoSession is returned when a download is attempted without a session.
var ErrNoSession = errors.New("no session")
