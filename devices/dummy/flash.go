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

// Package dummy provides a fake device whose serial flash is backed by a
// local directory. It is used by the emulator and the flash tool.
package dummy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akenge/dualboot/devices"
)

// Flash is an emulated serial flash rooted at a state directory. Slot paths
// such as "/sys/custom.bin" map to files below that directory.
//
// Slots are allocated at a fixed size and filled with 0xFF, the erased-flash
// state. Write replaces the payload in place from offset zero and leaves the
// rest of the allocation untouched, which is how the real filesystem behaves
// when a file is opened for write without being recreated.
type Flash struct {
	storage string
	open    bool
}

var _ devices.Flash = (*Flash)(nil)

// New creates a flash instance backed by the given state directory. The
// directory must already exist; its contents survive across emulator runs
// the same way flash contents survive a power cycle.
func New(storage string) (*Flash, error) {
	dStat, err := os.Stat(storage)
	if err != nil {
		return nil, fmt.Errorf("unable to stat device storage dir %q: %w", storage, err)
	}
	if !dStat.Mode().IsDir() {
		return nil, fmt.Errorf("device storage %q is not a directory", storage)
	}
	return &Flash{storage: storage}, nil
}

// Open powers up the emulated transport.
func (f *Flash) Open() error {
	if f.open {
		return fmt.Errorf("flash already open")
	}
	if _, err := os.Stat(f.storage); err != nil {
		return fmt.Errorf("device storage went away: %w", err)
	}
	f.open = true
	return nil
}

// Close powers the emulated transport down.
func (f *Flash) Close() error {
	if !f.open {
		return devices.ErrClosed
	}
	f.open = false
	return nil
}

// Exists reports whether a slot is allocated at path.
func (f *Flash) Exists(path string) bool {
	if !f.open {
		return false
	}
	_, err := os.Stat(f.hostPath(path))
	return err == nil
}

// Create allocates a slot of the given capacity, filled with 0xFF.
func (f *Flash) Create(path string, capacity int) error {
	if !f.open {
		return devices.ErrClosed
	}
	if capacity <= 0 {
		return fmt.Errorf("invalid slot capacity %d for %q", capacity, path)
	}
	hp := f.hostPath(path)
	if _, err := os.Stat(hp); err == nil {
		return fmt.Errorf("slot %q already allocated", path)
	}
	if err := os.MkdirAll(filepath.Dir(hp), 0755); err != nil {
		return fmt.Errorf("failed to create slot %q: %w", path, err)
	}
	erased := make([]byte, capacity)
	for i := range erased {
		erased[i] = 0xFF
	}
	if err := os.WriteFile(hp, erased, 0644); err != nil {
		return fmt.Errorf("failed to create slot %q: %w", path, err)
	}
	return nil
}

// Size returns the allocated capacity of the slot at path.
func (f *Flash) Size(path string) (int, error) {
	if !f.open {
		return 0, devices.ErrClosed
	}
	st, err := os.Stat(f.hostPath(path))
	if err != nil {
		return 0, fmt.Errorf("failed to stat slot %q: %w", path, err)
	}
	return int(st.Size()), nil
}

// Read returns the entire allocation of the slot at path.
func (f *Flash) Read(path string) ([]byte, error) {
	if !f.open {
		return nil, devices.ErrClosed
	}
	data, err := os.ReadFile(f.hostPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", path, err)
	}
	return data, nil
}

// Write replaces the slot payload from offset zero. Absent slots are
// allocated with capacity equal to the payload.
func (f *Flash) Write(path string, data []byte) error {
	if !f.open {
		return devices.ErrClosed
	}
	hp := f.hostPath(path)
	st, err := os.Stat(hp)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(hp), 0755); err != nil {
			return fmt.Errorf("failed to allocate slot %q: %w", path, err)
		}
		if err := os.WriteFile(hp, data, 0644); err != nil {
			return fmt.Errorf("failed to write slot %q: %w", path, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat slot %q: %w", path, err)
	}
	if len(data) > int(st.Size()) {
		return fmt.Errorf("payload of %d bytes exceeds %d-byte allocation of slot %q", len(data), st.Size(), path)
	}
	fh, err := os.OpenFile(hp, os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open slot %q: %w", path, err)
	}
	defer fh.Close()
	if _, err := fh.WriteAt(data, 0); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", path, err)
	}
	return fh.Sync()
}

// Delete removes the slot at path.
func (f *Flash) Delete(path string) error {
	if !f.open {
		return devices.ErrClosed
	}
	if err := os.Remove(f.hostPath(path)); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", path, err)
	}
	return nil
}

func (f *Flash) hostPath(path string) string {
	return filepath.Join(f.storage, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}
