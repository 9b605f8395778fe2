package artwork

import "fmt"

// ResolveURL builds the fetchable cover art URL for an image key served
// by the paired core. Returns ok=false when the track has no artwork.
// The base address is used as-is; a malformed address yields a malformed
// URL for the fetcher to reject.
func ResolveURL(baseAddress, imageKey string) (string, bool) {
	if imageKey == "" {
		return "", false
	}
	return fmt.Sprintf("http://%s/image/%s", baseAddress, imageKey), true
}
