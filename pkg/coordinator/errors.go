package coordinator

import "errors"

// errBadStats is returned by parseStats for a malformed INFO control-channel
// reply; it never reaches a client, only a log line.
var errBadStats = errors.New("coordinator: malformed stats reply from node")
