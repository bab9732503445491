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

	"github.com/akenge/dualboot/api"
)

// Action is what the boot sequence must do after a decision.
type Action int

const (
	// LoadFactory loads and runs the factory image.
	LoadFactory Action = iota
	// LoadCustom loads and runs the custom image.
	LoadCustom
	// SelfHeal wipes the untrusted record and forces a hard reset; no image
	// is loaded this cycle.
	SelfHeal
)

func (a Action) String() string {
	switch a {
	case LoadFactory:
		return "load-factory"
	case LoadCustom:
		return "load-custom"
	case SelfHeal:
		return "self-heal"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// TargetImage returns the image an action loads. ok is false for SelfHeal.
func (a Action) TargetImage() (img api.Image, ok bool) {
	switch a {
	case LoadFactory:
		return api.ImageFactory, true
	case LoadCustom:
		return api.ImageCustom, true
	default:
		return 0, false
	}
}

// Decision is the outcome of consulting the boot record. When Persist is
// non-nil the new record must be fully persisted before the action is
// carried out; that single ordered write is the entire crash-safety
// argument, so it is never optional.
type Decision struct {
	// Persist is the record to write before acting, or nil if the record
	// must not be touched.
	Persist *api.BootRecord
	// Action is what to do once any persistence has completed.
	Action Action
}

// Decide maps the current boot record to a decision. It is pure and total:
// no I/O, and every value of the status and image fields is handled,
// including out-of-range ones.
//
// The only state meaning "unconfirmed firmware is about to run" is CHECKING,
// and Decide emits it for persistence strictly before the custom image load
// it licenses. A boot that finds CHECKING therefore knows the previous
// attempt died before the running firmware confirmed itself healthy, and
// rolls back. ERR is the explicit, application-reported flavour of the same
// failure and is handled identically; the two arms are deliberately kept
// separate rather than shared, so each state reads on its own.
func Decide(rec api.BootRecord) Decision {
	switch rec.Status {
	case api.StatusOK:
		// Stable state: repeat the last known-good boot, touch nothing.
		switch rec.Image {
		case api.ImageFactory:
			return Decision{Action: LoadFactory}
		case api.ImageCustom:
			return Decision{Action: LoadCustom}
		default:
			// An image value outside the enum cannot be booted and cannot
			// be trusted. Do not guess: wipe and restart from defaults.
			return Decision{Action: SelfHeal}
		}

	case api.StatusCheck:
		// Arm the dead-man's switch before the first run of new firmware.
		next := api.BootRecord{Status: api.StatusChecking, Image: api.ImageCustom}
		return Decision{Persist: &next, Action: LoadCustom}

	case api.StatusChecking:
		// The previous attempt was never confirmed healthy: failed update.
		next := api.BootRecord{Status: api.StatusOK, Image: api.ImageFactory}
		return Decision{Persist: &next, Action: LoadFactory}

	case api.StatusErr:
		// The application reported itself broken: roll back.
		next := api.BootRecord{Status: api.StatusOK, Image: api.ImageFactory}
		return Decision{Persist: &next, Action: LoadFactory}

	default:
		return Decision{Action: SelfHeal}
	}
}
