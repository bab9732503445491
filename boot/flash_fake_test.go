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
	"fmt"

	"github.com/akenge/dualboot/devices"
)

// fakeFlash is an in-memory Flash which records the order of operations and
// can be scripted to fail. The op log is what lets tests assert the
// persist-before-load ordering the protocol depends on.
type fakeFlash struct {
	open   bool
	slots  map[string][]byte
	log    []string
	failOn map[string]error // keyed by "op path"
}

var _ devices.Flash = (*fakeFlash)(nil)

func newFakeFlash() *fakeFlash {
	return &fakeFlash{
		open:   true,
		slots:  map[string][]byte{},
		failOn: map[string]error{},
	}
}

func (f *fakeFlash) fail(op, path string) error {
	key := op + " " + path
	f.log = append(f.log, key)
	return f.failOn[key]
}

func (f *fakeFlash) Open() error {
	if err := f.fail("open", ""); err != nil {
		return err
	}
	f.open = true
	return nil
}

func (f *fakeFlash) Close() error {
	if err := f.fail("close", ""); err != nil {
		return err
	}
	f.open = false
	return nil
}

func (f *fakeFlash) Exists(path string) bool {
	_, ok := f.slots[path]
	return ok
}

func (f *fakeFlash) Create(path string, capacity int) error {
	if err := f.fail("create", path); err != nil {
		return err
	}
	if _, ok := f.slots[path]; ok {
		return fmt.Errorf("slot %q already allocated", path)
	}
	erased := make([]byte, capacity)
	for i := range erased {
		erased[i] = 0xFF
	}
	f.slots[path] = erased
	return nil
}

func (f *fakeFlash) Size(path string) (int, error) {
	if err := f.fail("size", path); err != nil {
		return 0, err
	}
	slot, ok := f.slots[path]
	if !ok {
		return 0, fmt.Errorf("no slot %q", path)
	}
	return len(slot), nil
}

func (f *fakeFlash) Read(path string) ([]byte, error) {
	if err := f.fail("read", path); err != nil {
		return nil, err
	}
	slot, ok := f.slots[path]
	if !ok {
		return nil, fmt.Errorf("no slot %q", path)
	}
	return append([]byte(nil), slot...), nil
}

func (f *fakeFlash) Write(path string, data []byte) error {
	if err := f.fail("write", path); err != nil {
		return err
	}
	slot, ok := f.slots[path]
	if !ok {
		f.slots[path] = append([]byte(nil), data...)
		return nil
	}
	if len(data) > len(slot) {
		return fmt.Errorf("payload exceeds allocation of slot %q", path)
	}
	copy(slot, data)
	return nil
}

func (f *fakeFlash) Delete(path string) error {
	if err := f.fail("delete", path); err != nil {
		return err
	}
	if _, ok := f.slots[path]; !ok {
		return fmt.Errorf("no slot %q", path)
	}
	delete(f.slots, path)
	return nil
}

// logIndex returns the position of the first log entry for "op path", or -1.
func (f *fakeFlash) logIndex(op, path string) int {
	key := op + " " + path
	for i, e := range f.log {
		if e == key {
			return i
		}
	}
	return -1
}
