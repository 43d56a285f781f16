package handler

import "encoding/json"

// rawPayload re-exposes stored JSON without double encoding.
func rawPayload(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}
