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
	"testing"

	"github.com/akenge/dualboot/api"
)

func TestStoreWriteReadRoundTrip(t *testing.T) {
	flash := newFakeFlash()
	store := NewRecordStore(flash, "")

	for _, s := range []api.Status{api.StatusOK, api.StatusCheck, api.StatusChecking, api.StatusErr} {
		for _, i := range []api.Image{api.ImageFactory, api.ImageCustom} {
			rec := api.BootRecord{Status: s, Image: i}
			if err := store.Write(rec); err != nil {
				t.Fatalf("Write(%v): %v", rec, err)
			}
			got, err := store.Read()
			if err != nil {
				t.Fatalf("Read after Write(%v): %v", rec, err)
			}
			if got != rec {
				t.Fatalf("Read = %v, want %v", got, rec)
			}
		}
	}
}

func TestStoreWriteAllocatesSlot(t *testing.T) {
	flash := newFakeFlash()
	store := NewRecordStore(flash, "")

	if store.Exists() {
		t.Fatal("record slot exists before first write")
	}
	if err := store.Write(api.DefaultRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !store.Exists() {
		t.Fatal("record slot missing after write")
	}
	size, err := flash.Size(DefaultRecordPath)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != SlotCapacity {
		t.Fatalf("slot allocated at %d bytes, want %d", size, SlotCapacity)
	}
}

func TestStoreReadAbsent(t *testing.T) {
	store := NewRecordStore(newFakeFlash(), "")

	_, err := store.Read()
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("Read of absent record returned %v, want *StorageError", err)
	}
	if !errors.Is(err, ErrNoRecord) {
		t.Fatalf("Read of absent record returned %v, want ErrNoRecord", err)
	}
}

func TestStoreEnsureRecordCreatesDefault(t *testing.T) {
	flash := newFakeFlash()
	store := NewRecordStore(flash, "")

	rec, created, err := store.EnsureRecord()
	if err != nil {
		t.Fatalf("EnsureRecord: %v", err)
	}
	if !created {
		t.Fatal("EnsureRecord did not report creating a record")
	}
	if rec != api.DefaultRecord() {
		t.Fatalf("EnsureRecord = %v, want %v", rec, api.DefaultRecord())
	}

	// A second boot finds the record and leaves it alone.
	rec, created, err = store.EnsureRecord()
	if err != nil {
		t.Fatalf("EnsureRecord: %v", err)
	}
	if created {
		t.Fatal("EnsureRecord recreated an existing record")
	}
	if rec != api.DefaultRecord() {
		t.Fatalf("EnsureRecord = %v, want %v", rec, api.DefaultRecord())
	}
}

func TestStoreSurfacesFailuresAsStorageErrors(t *testing.T) {
	boom := errors.New("flash is on fire")

	for _, test := range []struct {
		desc string
		key  string
		call func(*RecordStore) error
	}{
		{
			desc: "create",
			key:  "create boot.cfg",
			call: func(s *RecordStore) error { return s.Create() },
		},
		{
			desc: "write",
			key:  "write boot.cfg",
			call: func(s *RecordStore) error {
				if err := s.Create(); err != nil {
					return err
				}
				return s.Write(api.DefaultRecord())
			},
		},
		{
			desc: "read",
			key:  "read boot.cfg",
			call: func(s *RecordStore) error {
				if err := s.Write(api.DefaultRecord()); err != nil {
					return err
				}
				_, err := s.Read()
				return err
			},
		},
		{
			desc: "delete",
			key:  "delete boot.cfg",
			call: func(s *RecordStore) error {
				if err := s.Write(api.DefaultRecord()); err != nil {
					return err
				}
				return s.Delete()
			},
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			flash := newFakeFlash()
			flash.failOn[test.key] = boom
			store := NewRecordStore(flash, "")

			err := test.call(store)
			var serr *StorageError
			if !errors.As(err, &serr) {
				t.Fatalf("got %v, want *StorageError", err)
			}
			if !errors.Is(err, boom) {
				t.Fatalf("got %v, want wrapped %v", err, boom)
			}
		})
	}
}

func TestStoreCustomPath(t *testing.T) {
	flash := newFakeFlash()
	store := NewRecordStore(flash, "alt/boot.cfg")

	if err := store.Write(api.DefaultRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !flash.Exists("alt/boot.cfg") {
		t.Fatal("record not written to configured path")
	}
	if flash.Exists(DefaultRecordPath) {
		t.Fatal("record written to default path despite configuration")
	}
}
