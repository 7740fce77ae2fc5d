package skport

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSign derives the request signature the SKPort API expects on
// signed endpoints.
//
// The scheme matches the game client exactly: a canonical header blob is
// serialized with a fixed key order, concatenated with the request path,
// body and timestamp, HMAC-SHA256'd with the per-session signing token,
// and the lowercase hex digest of that HMAC is then MD5'd as a string.
// Any deviation (key order, hashing raw bytes instead of the hex string)
// produces a signature the server rejects.
//
// ts is Unix seconds and must be generated immediately before the request
// is sent; the server rejects stale timestamps. Callers retrying a stale
// signature must regenerate both the timestamp and the signature.
func ComputeSign(token, path, body string, ts int64) (string, error) {
	if token == "" {
		return "", fmt.Errorf("computing sign: empty signing token")
	}

	if path == "" {
		return "", fmt.Errorf("computing sign: empty request path")
	}

	// Key order is load-bearing. Build the blob by hand rather than via
	// json.Marshal on a map, which would sort keys alphabetically.
	headerBlob := fmt.Sprintf(`{"platform":"3","timestamp":"%d","dId":"","vName":"1.0.0"}`, ts)

	mac := hmac.New(sha256.New, []byte(token))
	fmt.Fprintf(mac, "%s%s%d%s", path, body, ts, headerBlob)
	hmacHex := hex.EncodeToString(mac.Sum(nil))

	sum := md5.Sum([]byte(hmacHex))

	return hex.EncodeToString(sum[:]), nil
}
