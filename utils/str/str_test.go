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
package str

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "42", ToString(42))
	assert.Equal(t, "42", ToString(int64(42)))
	assert.Equal(t, "7", ToString(uint(7)))
	assert.Equal(t, "raw", ToString([]byte("raw")))
	assert.Equal(t, "boom", ToString(errors.New("boom")))
	assert.Equal(t, `{"a":1}`, ToString(map[string]int{"a": 1}))
	assert.Equal(t, `{"1":"x"}`, ToString(map[interface{}]interface{}{1: "x"}))
	assert.Equal(t, `["a","b"]`, ToString([]interface{}{"a", "b"}))
}

func TestToStringMapString(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "x"},
		ToStringMapString(map[string]interface{}{"a": 1, "b": "x"}))
	assert.Equal(t, map[string]string{"k": "v"}, ToStringMapString(map[string]string{"k": "v"}))
	assert.Equal(t, map[string]string{}, ToStringMapString(3))
}
