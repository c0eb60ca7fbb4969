package keyboard

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CallbackDataSeparator = ":"
	// CallbackDataLimitBytes is the tighter of Telegram callback_data and
	// Discord custom_id limits.
	CallbackDataLimitBytes = 64
)

// EncodeCallback joins an action such as "bj:hit" with its payload.
func EncodeCallback(action, data string) (string, error) {
	if action == "" {
		return "", errors.New("callback action is empty")
	}

	payload := action
	if data != "" {
		payload = action + CallbackDataSeparator + data
	}
	if len(payload) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(payload))
	}

	return payload, nil
}

// DecodeCallback splits callback data at its last separator, so actions may
// themselves contain separators while payloads may not.
func DecodeCallback(callbackData string) (action, data string, err error) {
	if callbackData == "" {
		return "", "", errors.New("callback data is empty")
	}

	idx := strings.LastIndex(callbackData, CallbackDataSeparator)
	if idx == -1 {
		return callbackData, "", nil
	}

	return callbackData[:idx], callbackData[idx+len(CallbackDataSeparator):], nil
}
