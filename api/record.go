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

// Package api contains the value types shared between the boot selector,
// the device emulator, and the flashing tools.
package api

import (
	"encoding/binary"
	"fmt"
)

// Status describes the outcome of the previous boot attempt as persisted in
// the boot record. The numeric values are part of the on-flash format and
// must not be reordered.
type Status uint32

const (
	// StatusOK means the last boot succeeded; boot the recorded image again.
	StatusOK Status = iota
	// StatusCheck means new custom firmware was installed and should be
	// given its first, unconfirmed run.
	StatusCheck
	// StatusChecking means a first run of custom firmware was started but
	// never confirmed healthy. Finding this at boot means that run failed.
	StatusChecking
	// StatusErr means the running firmware explicitly reported itself broken.
	StatusErr
)

// Image identifies which firmware image to load. The numeric values are part
// of the on-flash format and must not be reordered.
type Image uint32

const (
	// ImageFactory is the immutable fallback firmware.
	ImageFactory Image = iota
	// ImageCustom is the field-updatable firmware.
	ImageCustom
)

// RecordSize is the marshalled size of a BootRecord in bytes: two
// little-endian uint32 fields, status then image.
const RecordSize = 8

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusCheck:
		return "CHECK"
	case StatusChecking:
		return "CHECKING"
	case StatusErr:
		return "ERR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint32(s))
	}
}

func (i Image) String() string {
	switch i {
	case ImageFactory:
		return "factory"
	case ImageCustom:
		return "custom"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(i))
	}
}

// BootRecord is the single persisted record driving image selection. It is
// stored as a fixed 8-byte payload at the front of a fixed-capacity slot on
// the device flash.
type BootRecord struct {
	// Status is the state of the rollback protocol.
	Status Status
	// Image is the firmware image selected for this device.
	Image Image
}

// DefaultRecord is the record created on a device which has never booted:
// run the factory image and consider it healthy.
func DefaultRecord() BootRecord {
	return BootRecord{Status: StatusOK, Image: ImageFactory}
}

// Marshal serialises the record into its on-flash form.
func (r BootRecord) Marshal() []byte {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.Status))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(r.Image))
	return buf
}

// UnmarshalBootRecord parses a record from the raw slot contents. Bytes
// beyond the record payload are reserved and ignored. Out-of-range status or
// image values are preserved as-is: deciding what to do about a corrupt
// record is the state machine's job, not the codec's.
func UnmarshalBootRecord(raw []byte) (BootRecord, error) {
	if len(raw) < RecordSize {
		return BootRecord{}, fmt.Errorf("boot record too short: got %d bytes, want at least %d", len(raw), RecordSize)
	}
	return BootRecord{
		Status: Status(binary.LittleEndian.Uint32(raw[0:4])),
		Image:  Image(binary.LittleEndian.Uint32(raw[4:8])),
	}, nil
}

// String returns a human-readable representation of the record.
func (r BootRecord) String() string {
	return fmt.Sprintf("{status: %s, image: %s}", r.Status, r.Image)
}
