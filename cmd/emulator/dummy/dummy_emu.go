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

// dummy_emu is an "emulator" for the dummy dual-image device.
//
// On each run it performs one cold boot: the boot record on the emulated
// flash is consulted (and created with defaults if absent), the selected
// firmware image is copied into the emulated execution region, and control
// is handed to it. Firmware images are WebAssembly modules; a hard reset is
// emulated by exiting with a distinct code so a supervising loop can
// relaunch.
//
// Usage:
//   go run ./cmd/emulator/dummy --logtostderr --device_storage=/tmp/dummy_device
package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/akenge/dualboot/cmd/emulator/dummy/impl"
)

var (
	deviceStorage = flag.String("device_storage", "/tmp/dummy_device", "Directory path of the dummy device's state storage")
	ramSize       = flag.Int("ram_size", 64*1024, "Size in bytes of the emulated execution region")
	entryPoint    = flag.String("entry_point", "main", "Name of the firmware function to execute")
)

func main() {
	flag.Parse()

	if err := impl.Main(impl.EmulatorOpts{
		DeviceStorage: *deviceStorage,
		RAMSize:       *ramSize,
		EntryPoint:    *entryPoint,
	}); err != nil {
		glog.Exitf("emulator: %v", err)
	}
	glog.Flush()
}
