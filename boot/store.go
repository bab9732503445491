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

// Package boot implements the power-loss-safe dual-image boot selector: the
// persisted boot record, the decision state machine, and the boot sequence
// that ties them to the storage and execution collaborators.
package boot

import (
	"github.com/golang/glog"

	"github.com/akenge/dualboot/api"
	"github.com/akenge/dualboot/devices"
)

const (
	// DefaultRecordPath is where the boot record lives on the device flash.
	DefaultRecordPath = "boot.cfg"
	// SlotCapacity is the fixed allocation for the record slot. The payload
	// is 8 bytes; the rest is reserved so the allocation never resizes.
	SlotCapacity = 512
)

// RecordStore persists the single boot record as a fixed-size blob on the
// device flash. It performs no retries: any storage failure is surfaced as a
// *StorageError and ends the boot attempt.
type RecordStore struct {
	flash devices.Flash
	path  string
}

// NewRecordStore returns a store for the record slot at path. An empty path
// selects DefaultRecordPath.
func NewRecordStore(flash devices.Flash, path string) *RecordStore {
	if path == "" {
		path = DefaultRecordPath
	}
	return &RecordStore{flash: flash, path: path}
}

// Path returns the slot path this store operates on.
func (s *RecordStore) Path() string {
	return s.path
}

// Exists reports whether the record slot is allocated.
func (s *RecordStore) Exists() bool {
	return s.flash.Exists(s.path)
}

// Create allocates the record slot. Callers normally use Write or
// EnsureRecord instead, which allocate on demand.
func (s *RecordStore) Create() error {
	if err := s.flash.Create(s.path, SlotCapacity); err != nil {
		return &StorageError{Op: "create", Path: s.path, Err: err}
	}
	return nil
}

// Read returns the persisted record. Callers must check Exists first; a read
// of an absent slot fails with a *StorageError wrapping ErrNoRecord.
func (s *RecordStore) Read() (api.BootRecord, error) {
	if !s.Exists() {
		return api.BootRecord{}, &StorageError{Op: "read", Path: s.path, Err: ErrNoRecord}
	}
	raw, err := s.flash.Read(s.path)
	if err != nil {
		return api.BootRecord{}, &StorageError{Op: "read", Path: s.path, Err: err}
	}
	rec, err := api.UnmarshalBootRecord(raw)
	if err != nil {
		return api.BootRecord{}, &StorageError{Op: "read", Path: s.path, Err: err}
	}
	return rec, nil
}

// Write fully replaces the persisted record, allocating the slot first if
// absent. It returns only after the storage collaborator reports the write
// complete; the rollback protocol depends on this ordering.
func (s *RecordStore) Write(rec api.BootRecord) error {
	if !s.Exists() {
		if err := s.Create(); err != nil {
			return err
		}
	}
	if err := s.flash.Write(s.path, rec.Marshal()); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Delete removes the record slot. Used only to self-heal from a corrupt
// record; the next boot recreates safe defaults.
func (s *RecordStore) Delete() error {
	if err := s.flash.Delete(s.path); err != nil {
		return &StorageError{Op: "delete", Path: s.path, Err: err}
	}
	return nil
}

// EnsureRecord returns the current record, persisting the default one first
// if none exists. The returned flag reports whether a record was created.
func (s *RecordStore) EnsureRecord() (api.BootRecord, bool, error) {
	created := false
	if !s.Exists() {
		glog.Infof("%s not found, creating new...", s.path)
		if err := s.Write(api.DefaultRecord()); err != nil {
			return api.BootRecord{}, false, err
		}
		created = true
	}
	rec, err := s.Read()
	if err != nil {
		return api.BootRecord{}, created, err
	}
	return rec, created, nil
}
