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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/akenge/dualboot/api"
)

func TestDecide(t *testing.T) {
	checking := api.BootRecord{Status: api.StatusChecking, Image: api.ImageCustom}
	rollback := api.BootRecord{Status: api.StatusOK, Image: api.ImageFactory}

	for _, test := range []struct {
		desc string
		rec  api.BootRecord
		want Decision
	}{
		{
			desc: "stable factory boot",
			rec:  api.BootRecord{Status: api.StatusOK, Image: api.ImageFactory},
			want: Decision{Action: LoadFactory},
		},
		{
			desc: "stable custom boot",
			rec:  api.BootRecord{Status: api.StatusOK, Image: api.ImageCustom},
			want: Decision{Action: LoadCustom},
		},
		{
			desc: "new firmware arms the dead-man's switch",
			rec:  api.BootRecord{Status: api.StatusCheck, Image: api.ImageCustom},
			want: Decision{Persist: &checking, Action: LoadCustom},
		},
		{
			desc: "unconfirmed attempt rolls back",
			rec:  api.BootRecord{Status: api.StatusChecking, Image: api.ImageCustom},
			want: Decision{Persist: &rollback, Action: LoadFactory},
		},
		{
			desc: "reported failure rolls back identically",
			rec:  api.BootRecord{Status: api.StatusErr, Image: api.ImageCustom},
			want: Decision{Persist: &rollback, Action: LoadFactory},
		},
		{
			desc: "unrecognised status self-heals",
			rec:  api.BootRecord{Status: api.Status(99), Image: api.ImageFactory},
			want: Decision{Action: SelfHeal},
		},
		{
			desc: "stable record with unrecognised image self-heals",
			rec:  api.BootRecord{Status: api.StatusOK, Image: api.Image(7)},
			want: Decision{Action: SelfHeal},
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			got := Decide(test.rec)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Fatalf("Decide(%v) diff: %s", test.rec, diff)
			}
		})
	}
}

// A stable boot must not drift: deciding the same record over and over
// yields the same loaded image and never asks for persistence.
func TestDecideStableIsIdempotent(t *testing.T) {
	rec := api.BootRecord{Status: api.StatusOK, Image: api.ImageFactory}
	for i := 0; i < 100; i++ {
		d := Decide(rec)
		if d.Persist != nil {
			t.Fatalf("iteration %d: stable boot asked to persist %v", i, *d.Persist)
		}
		if d.Action != LoadFactory {
			t.Fatalf("iteration %d: got action %v, want %v", i, d.Action, LoadFactory)
		}
	}
}

// Every status value must produce exactly one decision, including values far
// outside the enum.
func TestDecideIsTotal(t *testing.T) {
	for _, s := range []api.Status{0, 1, 2, 3, 4, 5, 99, 0xFFFFFFFF} {
		for _, i := range []api.Image{0, 1, 2, 0xFFFFFFFF} {
			d := Decide(api.BootRecord{Status: s, Image: i})
			if d.Action != LoadFactory && d.Action != LoadCustom && d.Action != SelfHeal {
				t.Fatalf("Decide({%v, %v}) returned unknown action %v", s, i, d.Action)
			}
			if d.Action == SelfHeal && d.Persist != nil {
				t.Fatalf("Decide({%v, %v}) asked to persist alongside self-heal", s, i)
			}
		}
	}
}
