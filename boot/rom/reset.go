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
	"os"

	"github.com/golang/glog"
)

// ResetExitCode is the process exit code SOCReset terminates with. A
// supervisor can watch for it and relaunch the emulator, modelling the
// reboot.
const ResetExitCode = 86

// Resetter is the unconditional hard-reset primitive. HardReset never
// returns in production implementations; it is the fail-stop response to
// any unrecoverable boot error.
type Resetter interface {
	HardReset()
}

// SOCReset emulates the SoC reset by terminating the process with
// ResetExitCode.
type SOCReset struct{}

var _ Resetter = SOCReset{}

// HardReset flushes diagnostics and terminates the process. It never
// returns.
func (SOCReset) HardReset() {
	glog.Warning("hard reset")
	glog.Flush()
	os.Exit(ResetExitCode)
}
