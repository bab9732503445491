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
	"github.com/golang/glog"

	"github.com/akenge/dualboot/api"
)

// ImageLoader copies a firmware image into the execution memory region and
// returns the image length. Implementations must never overflow their
// destination region.
type ImageLoader interface {
	Load(img api.Image) (int, error)
}

// Outcome reports what a completed boot sequence decided and loaded. The
// caller is expected to tear down the storage transport and then hand
// execution over to the loaded image.
type Outcome struct {
	// Record is the record in effect for this boot, after any transition
	// was persisted.
	Record api.BootRecord
	// Image is the image that was loaded.
	Image api.Image
	// Length is the loaded image size in bytes.
	Length int
}

// Sequence runs one boot cycle: ensure a record exists, consult the state
// machine, persist any transition strictly before the image load it
// licenses, and load the target image.
//
// It is strictly sequential and single-threaded; the record and the
// execution region are exclusively owned by the running sequence. Any error
// return is fatal to this boot attempt and the caller must hard-reset.
// Nothing here retries; the retry is the next power cycle re-running the
// whole decision.
type Sequence struct {
	Store  *RecordStore
	Loader ImageLoader
}

// Run executes the boot cycle. On a *CorruptRecordError the record has
// already been wiped so that the next boot recreates defaults.
func (s *Sequence) Run() (*Outcome, error) {
	rec, created, err := s.Store.EnsureRecord()
	if err != nil {
		return nil, err
	}
	if created {
		glog.Infof("created default boot record %v", rec)
	}
	glog.Infof("boot status: %s", rec.Status)

	d := Decide(rec)

	if d.Action == SelfHeal {
		glog.Warningf("untrusted boot record %v, wiping", rec)
		if err := s.Store.Delete(); err != nil {
			return nil, err
		}
		return nil, &CorruptRecordError{Record: rec}
	}

	// The write below is the dead-man's switch for the CHECK path and the
	// rollback commit for the CHECKING/ERR paths. It must complete before
	// the load; there is no log or journal underneath to recover from a
	// different ordering.
	if d.Persist != nil {
		glog.Infof("persisting %v before %s", *d.Persist, d.Action)
		if err := s.Store.Write(*d.Persist); err != nil {
			return nil, err
		}
		rec = *d.Persist
	}

	img, ok := d.Action.TargetImage()
	if !ok {
		// Unreachable: SelfHeal returned above and no other action exists.
		return nil, &CorruptRecordError{Record: rec}
	}

	glog.Infof("loading %s image", img)
	n, err := s.Loader.Load(img)
	if err != nil {
		return nil, &LoadError{Image: img, Err: err}
	}
	glog.Infof("loaded %s image (%d bytes)", img, n)

	return &Outcome{Record: rec, Image: img, Length: n}, nil
}
