package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// EventKey identifies one inbound chat event. Gateways may redeliver an
// event after a reconnect; both deliveries map to the same key.
func EventKey(platform, eventID string, extra ...string) string {
	h := sha256.New()
	h.Write([]byte(platform))
	h.Write([]byte{0})
	h.Write([]byte(eventID))
	if len(extra) > 0 {
		h.Write([]byte{0})
		h.Write([]byte(strings.Join(extra, "\x00")))
	}
	return "event:" + hex.EncodeToString(h.Sum(nil)[:16])
}
