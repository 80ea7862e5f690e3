package rpc

import "errors"

// errNotAdmin guards the handful of RPC methods (coin_credit) that exist
// only for operator/bridge use and have no equivalent admin check inside
// the engine they front.
var errNotAdmin = errors.New("rpc: caller is not the admin")
