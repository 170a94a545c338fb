//go:build fyne && !cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import "fmt"

// Run reports that the Fyne UI needs cgo. The fyne tag alone is not enough
// because the GL driver links against system OpenGL libraries.
func Run(projectDir string) error {
	return fmt.Errorf("UI requires cgo (OpenGL). Rebuild with CGO_ENABLED=1 and: go run -tags fyne ./cmd/directorstimeline ui %s", projectDir)
}
