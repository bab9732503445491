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

// Package impl is the implementation of the emulator for the dummy device.
package impl

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/akenge/dualboot/boot"
	"github.com/akenge/dualboot/boot/loader"
	"github.com/akenge/dualboot/boot/rom"
	"github.com/akenge/dualboot/devices/dummy"
)

// EmulatorOpts encapsulates the parameters for running the emulator.
type EmulatorOpts struct {
	// DeviceStorage is the directory backing the emulated serial flash.
	DeviceStorage string
	// RAMSize is the size of the emulated execution region in bytes.
	RAMSize int
	// EntryPoint is the firmware function to run; "main" if empty.
	EntryPoint string
	// Resetter substitutes the hard-reset primitive; rom.SOCReset if nil.
	Resetter rom.Resetter
}

// Main runs one emulated boot cycle: power up the flash, run the selection
// sequence, tear the flash down, and hand execution to the loaded image.
//
// Errors inside the boot protocol are fail-stop: they trigger the hard
// reset, exactly as on the device. The error is also returned so that tests
// can drive Main with a resetter that records instead of resetting. Errors
// before the flash is reachable (a bad storage path) are operator mistakes
// and are returned without a reset.
func Main(opts EmulatorOpts) error {
	flash, err := dummy.New(opts.DeviceStorage)
	if err != nil {
		return fmt.Errorf("device storage: %w", err)
	}
	if opts.RAMSize <= 0 {
		return fmt.Errorf("invalid RAM size %d", opts.RAMSize)
	}
	reset := opts.Resetter
	if reset == nil {
		reset = rom.SOCReset{}
	}

	glog.Info("----RESET----")
	glog.Infof("dualboot selector, flash at %q", opts.DeviceStorage)

	if err := flash.Open(); err != nil {
		glog.Warningf("failed to power up flash: %v", err)
		reset.HardReset()
		return err
	}

	store := boot.NewRecordStore(flash, "")
	region := make([]byte, opts.RAMSize)
	seq := &boot.Sequence{
		Store:  store,
		Loader: loader.New(flash, region, "", ""),
	}

	out, err := seq.Run()
	if err != nil {
		glog.Warningf("boot selection failed: %v", err)
		reset.HardReset()
		return err
	}

	// The record and image are final; tear the transport down before the
	// handoff, the way the device powers the network processor off before
	// jumping into firmware.
	if err := flash.Close(); err != nil {
		glog.Warningf("failed to power down flash: %v", err)
		reset.HardReset()
		return err
	}

	glog.Infof("running %s image", out.Image)

	handoff := &rom.WasmHandoff{Flash: flash, Store: store, EntryPoint: opts.EntryPoint}
	if err := handoff.Transfer(region[:out.Length]); err != nil {
		glog.Warningf("handoff failed: %v", err)
		reset.HardReset()
		return err
	}

	// The emulated firmware ran to completion; the device would sit here
	// until its next power cycle.
	glog.Info("firmware exited, powering down")
	return nil
}
