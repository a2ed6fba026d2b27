// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import "fmt"

// Upload channel size thresholds, bit-exact per the backend limits:
// release assets top out at 2 GiB, the direct-link host at 4 GB.
const (
	releaseAssetLimit int64 = 2_147_483_648
	directLinkLimit   int64 = 4_294_967_296
)

// SelectChannel picks the upload channel for a payload of the given size.
// Payloads of directLinkLimit bytes or more are rejected before any upload.
func SelectChannel(size int64) (Channel, error) {
	switch {
	case size < releaseAssetLimit:
		return ChannelReleaseAsset, nil
	case size < directLinkLimit:
		return ChannelDirectLink, nil
	default:
		return "", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, size)
	}
}
