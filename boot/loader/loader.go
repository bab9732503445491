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

// Package loader copies firmware images from the device flash into the
// fixed execution memory region.
package loader

import (
	"fmt"

	"github.com/akenge/dualboot/api"
	"github.com/akenge/dualboot/devices"
)

const (
	// DefaultFactoryPath is the flash path of the factory image.
	DefaultFactoryPath = "/sys/factory.bin"
	// DefaultCustomPath is the flash path of the custom image.
	DefaultCustomPath = "/sys/custom.bin"

	// BaseAddr is the SRAM address the execution region models. On the real
	// part, images are linked against this address and loaded there.
	BaseAddr = 0x20004000
)

// Error describes a failed image load. Loads fail closed: a missing image,
// a short read, or an image larger than the region all abort the boot
// attempt rather than run partial or truncated code.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("image %q: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Loader resolves image identifiers to flash paths and copies image bytes
// verbatim into its execution region.
type Loader struct {
	flash       devices.Flash
	region      []byte
	factoryPath string
	customPath  string
}

// New returns a Loader over the given execution region. Empty paths select
// the defaults.
func New(flash devices.Flash, region []byte, factoryPath, customPath string) *Loader {
	if factoryPath == "" {
		factoryPath = DefaultFactoryPath
	}
	if customPath == "" {
		customPath = DefaultCustomPath
	}
	return &Loader{
		flash:       flash,
		region:      region,
		factoryPath: factoryPath,
		customPath:  customPath,
	}
}

// Region returns the execution memory region the loader targets.
func (l *Loader) Region() []byte {
	return l.region
}

// Path returns the flash path an image identifier resolves to.
func (l *Loader) Path(img api.Image) (string, error) {
	switch img {
	case api.ImageFactory:
		return l.factoryPath, nil
	case api.ImageCustom:
		return l.customPath, nil
	default:
		return "", fmt.Errorf("unknown image type %d", uint32(img))
	}
}

// Load copies the named image into the execution region and returns its
// length. The region contents are undefined if an error is returned.
func (l *Loader) Load(img api.Image) (int, error) {
	path, err := l.Path(img)
	if err != nil {
		return 0, err
	}

	if !l.flash.Exists(path) {
		return 0, &Error{Path: path, Err: fmt.Errorf("not found")}
	}
	length, err := l.flash.Size(path)
	if err != nil {
		return 0, &Error{Path: path, Err: err}
	}
	if length == 0 {
		return 0, &Error{Path: path, Err: fmt.Errorf("empty image")}
	}
	if length > len(l.region) {
		return 0, &Error{Path: path, Err: fmt.Errorf("%d bytes exceed %d-byte execution region", length, len(l.region))}
	}

	data, err := l.flash.Read(path)
	if err != nil {
		return 0, &Error{Path: path, Err: err}
	}
	if len(data) != length {
		return 0, &Error{Path: path, Err: fmt.Errorf("short read: got %d of %d bytes", len(data), length)}
	}

	copy(l.region, data)
	return length, nil
}
