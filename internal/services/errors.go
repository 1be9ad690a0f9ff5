package services

import "errors"

// ErrNotAuthenticated is returned by any remote-sync operation invoked
// without a session. It is a hard precondition failure, never a silent
// no-op.
var ErrNotAuthenticated = errors.New("not authenticated")
