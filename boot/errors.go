// Copyright 2026 Akenge Engenharia. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package boot

import (
	"errors"
	"fmt"

	"github.com/akenge/dualboot/api"
)

// ErrNoRecord indicates that no boot record slot is allocated. Valid only
// before the very first boot.
var ErrNoRecord = errors.New("boot record not found")

// StorageError wraps any failure of the storage collaborator. It is fatal
// to the current boot attempt: the caller must hard-reset, never retry.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// CorruptRecordError indicates the persisted record held a value outside the
// known enum range. By the time it is returned the record has already been
// wiped; the caller must hard-reset so the next boot recreates defaults.
type CorruptRecordError struct {
	Record api.BootRecord
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("unrecognised boot record %v: storage wiped, reset required", e.Record)
}

// LoadError wraps a failure to load the selected image. Fatal: the record
// for any risky transition was already persisted before the load, so the
// next boot resolves the situation; for the stable path this is a hard
// device fault.
type LoadError struct {
	Image api.Image
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s image: %v", e.Image, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
