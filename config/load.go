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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/rulego/httpd/utils/json"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported configuration format")

// Load reads a configuration tree from a .json, .yaml/.yml or .toml file.
func Load(path string) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return LoadJSON(data)
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".toml":
		return LoadTOML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// LoadJSON decodes a tree such as
//
//	{"statements":[{"tokens":["listen","8080"]},
//	  {"tokens":["location","/"],"block":{"statements":[{"tokens":["root","./www"]}]}}]}
func LoadJSON(data []byte) (*Block, error) {
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadYAML decodes a tree such as
//
//	statements:
//	  - tokens: [listen, "8080"]
//	  - tokens: [location, /]
//	    block:
//	      statements:
//	        - tokens: [root, ./www]
func LoadYAML(data []byte) (*Block, error) {
	var b Block
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadTOML decodes a tree such as
//
//	[[statement]]
//	tokens = ["listen", "8080"]
//
//	[[statement]]
//	tokens = ["location", "/"]
//	[[statement.block.statement]]
//	tokens = ["root", "./www"]
func LoadTOML(data []byte) (*Block, error) {
	var b Block
	if _, err := toml.Decode(string(data), &b); err != nil {
		return nil, err
	}
	return &b, nil
}
