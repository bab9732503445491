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

// Package devices defines the storage collaborator consumed by the boot
// selector and the flashing tools.
package devices

import "errors"

// ErrClosed is returned by flash operations attempted before Open or after
// Close. On the real device the serial flash is only reachable while the
// network processor is powered.
var ErrClosed = errors.New("flash not powered up")

// Flash is a path-addressed storage service with fixed-capacity allocation,
// modelled on serial flash filesystems found on WiFi SoCs.
//
// Create allocates a slot of the given capacity, filled with the erased
// state (0xFF). Write fully replaces the payload of an existing slot from
// offset zero, leaving the remaining allocation untouched; if the slot does
// not exist it is allocated with capacity equal to the payload. Read returns
// the entire allocation. A single Write must appear complete-or-absent
// across a power cycle; that property is the only durability guarantee the
// boot protocol builds on.
//
// Open and Close bracket access to the medium, mirroring the bring-up and
// teardown of whatever transport exposes it. All other operations fail with
// ErrClosed outside that window.
type Flash interface {
	// Open powers up the transport to the storage medium.
	Open() error
	// Close tears the transport down. The medium must be left consistent.
	Close() error
	// Exists reports whether a slot is allocated at path.
	Exists(path string) bool
	// Create allocates a slot of the given capacity at path.
	Create(path string, capacity int) error
	// Size returns the allocated capacity of the slot at path.
	Size(path string) (int, error)
	// Read returns the entire allocation of the slot at path.
	Read(path string) ([]byte, error)
	// Write replaces the slot payload as described above.
	Write(path string, data []byte) error
	// Delete removes the slot at path.
	Delete(path string) error
}
