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
package fs

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a request path would resolve outside the served root.
var ErrOutsideRoot = errors.New("path escapes root directory")

// Resolve maps a slash-separated request path onto a file below root.
// The path is cleaned first, so "." and ".." segments can never leave root.
func Resolve(root, requestPath string) (string, error) {
	if strings.IndexByte(requestPath, 0) >= 0 {
		return "", ErrOutsideRoot
	}
	cleaned := path.Clean("/" + requestPath)
	full := filepath.Join(root, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// IsDir 判断路径是否为目录
func IsDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// IsExist 判断路径是否存在
func IsExist(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
