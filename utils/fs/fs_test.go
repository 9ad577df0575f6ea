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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	p, err := Resolve(root, "/a/b.txt")
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "a", "b.txt"), p)

	p, err = Resolve(root, "/../../etc/passwd")
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "etc", "passwd"), p)

	p, err = Resolve(root, "")
	assert.Nil(t, err)
	assert.Equal(t, root, p)

	_, err = Resolve(root, "/a\x00b")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestIsExist(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "x.txt")
	assert.False(t, IsExist(file))
	assert.Nil(t, os.WriteFile(file, []byte("x"), 0644))
	assert.True(t, IsExist(file))
	assert.False(t, IsDir(file))
	assert.True(t, IsDir(root))
}
