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

// Package rom provides the final stage of the boot sequence: transferring
// execution into a loaded image, and the hard-reset primitive used when
// that cannot happen.
package rom

import (
	"encoding/binary"
	"fmt"
)

// Handoff transfers control into a loaded firmware image.
//
// The image contract is that of the hardware: the region begins with two
// machine words, word 0 being the initial stack pointer and word 1 the
// entry routine address. On hardware, Transfer sets the stack pointer,
// branches to the entry address, and never returns; the previous execution
// context is gone. A non-nil error means the handoff could not start and
// the caller must hard-reset; falling through silently is never allowed.
//
// Substitute implementations used off-hardware relax "never returns":
// WasmHandoff returns nil once the emulated firmware has run to completion
// (the emulator's stand-in for the device running until power-off), and
// Recorder returns immediately so tests can observe the call.
type Handoff interface {
	Transfer(image []byte) error
}

// VectorSize is the length of the vector table prefix every bootable image
// must carry.
const VectorSize = 8

// Vector parses the two-word vector at the front of a loaded image.
func Vector(image []byte) (sp, entry uint32, err error) {
	if len(image) < VectorSize {
		return 0, 0, fmt.Errorf("image of %d bytes has no vector table", len(image))
	}
	return binary.LittleEndian.Uint32(image[0:4]), binary.LittleEndian.Uint32(image[4:8]), nil
}

// Recorder is a Handoff substitute that records the transfer instead of
// performing it.
type Recorder struct {
	// Image is a copy of the region passed to the last Transfer.
	Image []byte
	// SP and Entry are the parsed vector words of the last Transfer.
	SP, Entry uint32
	// Transfers counts Transfer calls.
	Transfers int
	// Err, if set, is returned by Transfer without recording vector words.
	Err error
}

var _ Handoff = (*Recorder)(nil)

// Transfer records the call.
func (r *Recorder) Transfer(image []byte) error {
	if r.Err != nil {
		return r.Err
	}
	sp, entry, err := Vector(image)
	if err != nil {
		return err
	}
	r.Image = append([]byte(nil), image...)
	r.SP = sp
	r.Entry = entry
	r.Transfers++
	return nil
}
