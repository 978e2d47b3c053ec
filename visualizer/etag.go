package visualizer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/opencontainers/go-digest"
)

// canonicalize encodes v as RFC 8785 canonical JSON and digests the result,
// so equal payloads always produce equal bytes and equal digests.
func canonicalize(v any) ([]byte, digest.Digest, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode payload: %w", err)
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, "", fmt.Errorf("failed to canonicalize payload: %w", err)
	}
	return canonical, digest.FromBytes(canonical), nil
}

// writeCacheable writes a 200 response tagged with the digest of its
// canonical form, or a bodyless 304 if the client already holds it.
func writeCacheable(ctx context.Context, w http.ResponseWriter, r *http.Request, body any) {
	canonical, dgst, err := canonicalize(body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	etag := `"` + dgst.String() + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeRaw(ctx, w, http.StatusOK, canonical)
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
