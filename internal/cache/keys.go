// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
)

// keyHashBytes is how much of the sha256 digest ends up in a key.
const keyHashBytes = 16

// GenerateKey derives a compact key "<method>:<hex>" from the JSON encoding
// of params. Equal params give equal keys. Params JSON cannot encode are
// hashed from their %#v form instead.
func GenerateKey(method string, params any) string {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(params); err != nil {
		h.Reset()
		fmt.Fprintf(h, "%#v", params)
	}
	return method + ":" + hex.EncodeToString(h.Sum(nil)[:keyHashBytes])
}
