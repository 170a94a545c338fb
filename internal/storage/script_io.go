/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ScriptFileName is the canonical screenplay text file inside the script subfolder.
const ScriptFileName = "script.txt"

// ScriptFilePath returns the path to the project's screenplay file, or an
// empty string for a nil handle.
func ScriptFilePath(ph *ProjectHandle) string {
	if ph == nil || ph.Root == "" {
		return ""
	}
	return filepath.Join(ph.Root, "script", ScriptFileName)
}

// ReadScript loads the screenplay text. A missing file is not an error; the
// project simply has no script yet.
func ReadScript(ph *ProjectHandle) (string, error) {
	p := ScriptFilePath(ph)
	if p == "" {
		return "", errors.New("nil ProjectHandle")
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(b), nil
}

// WriteScript stores the screenplay text, creating the script folder if needed.
func WriteScript(ph *ProjectHandle, text string) error {
	p := ScriptFilePath(ph)
	if p == "" {
		return errors.New("nil ProjectHandle")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("ensure script dir: %w", err)
	}
	if err := writeFileSync(p, []byte(text)); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}
