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
package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticConfig struct {
	Root    string
	Index   string
	Status  int
	Listing bool
	Methods []string
}

func TestMap2Struct(t *testing.T) {
	m := map[string]interface{}{
		"root":    "./www",
		"Status":  "404",
		"listing": "true",
		"methods": []string{"GET", "HEAD"},
	}
	var c staticConfig
	err := Map2Struct(m, &c)
	assert.Nil(t, err)
	assert.Equal(t, "./www", c.Root)
	assert.Equal(t, 404, c.Status)
	assert.True(t, c.Listing)
	assert.Equal(t, []string{"GET", "HEAD"}, c.Methods)
	assert.Equal(t, "", c.Index)

	m = map[string]interface{}{"methods": "GET"}
	c = staticConfig{}
	assert.Nil(t, Map2Struct(m, &c))
	assert.Equal(t, []string{"GET"}, c.Methods)

	m = map[string]interface{}{"status": "abc"}
	assert.NotNil(t, Map2Struct(m, &c))
}
