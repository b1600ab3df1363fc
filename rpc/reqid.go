// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc

import "math/rand/v2"

// MaxRequestID is the largest request id handed out. It is the largest
// integer a JSON number can carry without losing precision in a
// double-precision decoder, which is what most servers use.
const MaxRequestID = 1<<53 - 1

// maxIDAttempts bounds how many ids are drawn for a single call when the
// drawn id is already pending.
const maxIDAttempts = 8

// IDGenerator returns a request id in the range [1, MaxRequestID].
type IDGenerator func() uint64

// RandomID draws a request id uniformly from [1, MaxRequestID].
//
// Ids are not sequential, so two live requests can collide. With n
// requests outstanding the chance of any collision is roughly
// n²/2^54, which is negligible for realistic n; Conn still checks each
// id against the pending table and draws again when it is taken.
func RandomID() uint64 {
	return rand.Uint64N(MaxRequestID) + 1
}
