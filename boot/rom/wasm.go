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

package rom

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/perlin-network/life/exec"
	wasm_validation "github.com/perlin-network/life/wasm-validation"

	"github.com/akenge/dualboot/api"
	"github.com/akenge/dualboot/boot"
	"github.com/akenge/dualboot/boot/loader"
	"github.com/akenge/dualboot/devices"
)

// WasmHandoff executes a loaded image as a WebAssembly module on the
// emulated device. Instead of the hardware vector-table jump, the image is
// interpreted by a VM; the env imports below are the emulator's stand-ins
// for the device peripherals the firmware would touch.
//
// In particular the firmware confirms or rejects its own health through the
// __dualboot_confirm and __dualboot_fail imports, which rewrite the boot
// record to {OK, custom} or {ERR, custom}. That handshake belongs to
// application firmware, not to the boot selector; it is emulated here at
// the trust boundary so that the whole protocol can be exercised end to
// end.
type WasmHandoff struct {
	// Flash is powered up around record writes requested by the firmware.
	// The selector closed it before the handoff, as the real firmware
	// brings the transport up for itself.
	Flash devices.Flash
	// Store writes the firmware's health verdict.
	Store *boot.RecordStore
	// EntryPoint is the exported function to run; "main" if empty.
	EntryPoint string
}

var _ Handoff = (*WasmHandoff)(nil)

// Transfer runs the image to completion. A nil return means the emulated
// firmware exited, which the emulator treats as the device running until
// power-off. An error means the handoff could not start or the firmware
// trapped; the caller must hard-reset.
func (h *WasmHandoff) Transfer(image []byte) error {
	if err := wasm_validation.ValidateWasm(image); err != nil {
		return fmt.Errorf("image is not a valid module: %w", err)
	}

	vm, err := exec.NewVirtualMachine(image, exec.VMConfig{
		DefaultMemoryPages:   128,
		DefaultTableSize:     65536,
		DisableFloatingPoint: false,
	}, &resolver{h: h}, nil)
	if err != nil {
		return fmt.Errorf("failed to instantiate VM: %w", err)
	}

	entryPoint := h.EntryPoint
	if entryPoint == "" {
		entryPoint = "main"
	}
	entryID, ok := vm.GetFunctionExport(entryPoint)
	if !ok {
		glog.Warningf("entry function %q not found; starting from 0", entryPoint)
		entryID = 0
	}

	start := time.Now()

	// If the module declares a start function, run it first.
	if vm.Module.Base.Start != nil {
		startID := int(vm.Module.Base.Start.Index)
		if _, err := vm.Run(startID); err != nil {
			vm.PrintStackTrace()
			return err
		}
	}
	ret, err := vm.Run(entryID)
	if err != nil {
		vm.PrintStackTrace()
		return err
	}

	glog.Infof("firmware exited: return value = %d, duration = %v", ret, time.Since(start))
	return nil
}

// writeVerdict persists the firmware's health verdict, powering the flash
// up and down around the write.
func (h *WasmHandoff) writeVerdict(status api.Status) error {
	if h.Flash == nil || h.Store == nil {
		return fmt.Errorf("no record store wired for health verdicts")
	}
	if err := h.Flash.Open(); err != nil {
		return err
	}
	defer func() {
		if err := h.Flash.Close(); err != nil {
			glog.Warningf("failed to close flash after verdict: %v", err)
		}
	}()
	return h.Store.Write(api.BootRecord{Status: status, Image: api.ImageCustom})
}

// resolver defines the env imports available to emulated firmware.
type resolver struct {
	h *WasmHandoff
}

// ResolveFunc resolves the import functions firmware may call.
func (r *resolver) ResolveFunc(module, field string) exec.FunctionImport {
	switch module {
	case "env":
		switch field {
		case "__dualboot_log":
			return func(vm *exec.VirtualMachine) int64 {
				ptr := int(uint32(vm.GetCurrentFrame().Locals[0]))
				msgLen := int(uint32(vm.GetCurrentFrame().Locals[1]))
				msg := vm.Memory[ptr : ptr+msgLen]
				fmt.Printf("[firmware] %s\n", string(msg))
				return 0
			}
		case "__dualboot_confirm":
			return func(vm *exec.VirtualMachine) int64 {
				if err := r.h.writeVerdict(api.StatusOK); err != nil {
					glog.Warningf("firmware health confirmation failed: %v", err)
					return 1
				}
				glog.Info("firmware confirmed healthy")
				return 0
			}
		case "__dualboot_fail":
			return func(vm *exec.VirtualMachine) int64 {
				if err := r.h.writeVerdict(api.StatusErr); err != nil {
					glog.Warningf("firmware failure report failed: %v", err)
					return 1
				}
				glog.Info("firmware reported itself broken")
				return 0
			}
		case "print_i64":
			return func(vm *exec.VirtualMachine) int64 {
				fmt.Printf("[firmware] print_i64: %d\n", vm.GetCurrentFrame().Locals[0])
				return 0
			}
		case "print":
			return func(vm *exec.VirtualMachine) int64 {
				ptr := int(uint32(vm.GetCurrentFrame().Locals[0]))
				msgLen := 0
				for vm.Memory[ptr+msgLen] != 0 {
					msgLen++
				}
				msg := vm.Memory[ptr : ptr+msgLen]
				fmt.Printf("[firmware] print: %s\n", string(msg))
				return 0
			}
		default:
			panic(fmt.Errorf("unknown field: %s", field))
		}
	default:
		panic(fmt.Errorf("unknown module: %s", module))
	}
}

// ResolveGlobal resolves the global variables firmware may import.
func (r *resolver) ResolveGlobal(module, field string) int64 {
	switch module {
	case "env":
		switch field {
		case "__dualboot_base":
			return int64(loader.BaseAddr)
		default:
			panic(fmt.Errorf("unknown field: %s", field))
		}
	default:
		panic(fmt.Errorf("unknown module: %s", module))
	}
}
