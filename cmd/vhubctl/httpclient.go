package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mediahub/vhub/protocol"
)

func getEnvelope(path string, query url.Values) (protocol.Envelope, error) {
	u := baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	resp, err := client.Get(u)
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env protocol.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return protocol.Envelope{}, fmt.Errorf("decode response from %s: %w", path, err)
	}
	if env.EasyDarwin.Header.ErrorNum != protocol.ErrorSuccessOK {
		return env, fmt.Errorf("%s: %s", path, env.EasyDarwin.Header.ErrorString)
	}
	return env, nil
}
