/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
// Package json wraps encoding/json with the encoder settings used across the server:
// HTML characters are not escaped and no trailing newline is emitted.
package json

import (
	"bytes"
	"encoding/json"
)

// Marshal marshals v without escaping &, <, and >.
func Marshal(v interface{}) ([]byte, error) {
	return marshal(v, "")
}

// MarshalIndent marshals v with two-space indentation, used for human-facing output
// such as the status report.
func MarshalIndent(v interface{}) ([]byte, error) {
	return marshal(v, "  ")
}

func marshal(v interface{}, indent string) ([]byte, error) {
	var byteBuf bytes.Buffer
	encoder := json.NewEncoder(&byteBuf)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(byteBuf.Bytes(), []byte("\n")), nil
}

// Unmarshal json data to struct
func Unmarshal(b []byte, m interface{}) error {
	return json.Unmarshal(b, m)
}
