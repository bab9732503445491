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

// flash_tool operates on a dummy device's flash from the update side: it
// installs firmware images and drives the boot record through the update
// protocol.
//
// The typical update flow is:
//
//	flash_tool install --image new_fw.wasm --device_storage=/tmp/dummy_device
//	flash_tool arm --device_storage=/tmp/dummy_device
//
// after which the next emulator run gives the new image its unconfirmed
// first boot. The confirm and fail verbs emulate the running application
// firmware's health verdict; they exist so the protocol can be driven end
// to end from the command line, and stand in for code which on a real
// device lives inside the custom image, not in any tool.
package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/akenge/dualboot/api"
	"github.com/akenge/dualboot/boot"
	"github.com/akenge/dualboot/boot/loader"
	"github.com/akenge/dualboot/devices/dummy"
)

var (
	deviceStorage string
	imageFile     string
	target        string

	rootCmd = &cobra.Command{
		Use:           "flash_tool",
		Short:         "Operate on a dummy dual-image device's flash",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the boot record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(func(flash *dummy.Flash, store *boot.RecordStore) error {
				if !store.Exists() {
					fmt.Println("no boot record (device has never booted)")
					return nil
				}
				rec, err := store.Read()
				if err != nil {
					return err
				}
				fmt.Println(rec)
				return nil
			})
		},
	}

	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Write a firmware image onto the device flash",
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := os.ReadFile(imageFile)
			if err != nil {
				return fmt.Errorf("failed to read image file: %w", err)
			}
			path, err := targetPath()
			if err != nil {
				return err
			}
			return withDevice(func(flash *dummy.Flash, store *boot.RecordStore) error {
				// Recreate the slot so the allocation matches the image.
				if flash.Exists(path) {
					if err := flash.Delete(path); err != nil {
						return err
					}
				}
				if err := flash.Write(path, img); err != nil {
					return err
				}
				glog.Infof("installed %d bytes at %s", len(img), path)
				return nil
			})
		},
	}

	armCmd = &cobra.Command{
		Use:   "arm",
		Short: "Mark the custom image for its unconfirmed first boot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(func(flash *dummy.Flash, store *boot.RecordStore) error {
				if !flash.Exists(loader.DefaultCustomPath) {
					return fmt.Errorf("no custom image installed at %s", loader.DefaultCustomPath)
				}
				return writeRecord(store, api.BootRecord{Status: api.StatusCheck, Image: api.ImageCustom})
			})
		},
	}

	confirmCmd = &cobra.Command{
		Use:   "confirm",
		Short: "Emulate the custom firmware confirming itself healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(func(flash *dummy.Flash, store *boot.RecordStore) error {
				return writeRecord(store, api.BootRecord{Status: api.StatusOK, Image: api.ImageCustom})
			})
		},
	}

	failCmd = &cobra.Command{
		Use:   "fail",
		Short: "Emulate the custom firmware reporting itself broken",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(func(flash *dummy.Flash, store *boot.RecordStore) error {
				return writeRecord(store, api.BootRecord{Status: api.StatusErr, Image: api.ImageCustom})
			})
		},
	}

	wipeCmd = &cobra.Command{
		Use:   "wipe",
		Short: "Delete the boot record; the next boot recreates defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(func(flash *dummy.Flash, store *boot.RecordStore) error {
				if !store.Exists() {
					return nil
				}
				return store.Delete()
			})
		},
	}
)

// withDevice powers the flash up around fn, mirroring the transport
// lifecycle the bootloader itself uses.
func withDevice(fn func(*dummy.Flash, *boot.RecordStore) error) error {
	flash, err := dummy.New(deviceStorage)
	if err != nil {
		return err
	}
	if err := flash.Open(); err != nil {
		return err
	}
	defer func() {
		if err := flash.Close(); err != nil {
			glog.Warningf("failed to power down flash: %v", err)
		}
	}()
	return fn(flash, boot.NewRecordStore(flash, ""))
}

func writeRecord(store *boot.RecordStore, rec api.BootRecord) error {
	if err := store.Write(rec); err != nil {
		return err
	}
	glog.Infof("boot record set to %v", rec)
	return nil
}

func targetPath() (string, error) {
	switch target {
	case "custom":
		return loader.DefaultCustomPath, nil
	case "factory":
		return loader.DefaultFactoryPath, nil
	default:
		return "", fmt.Errorf("target must be one of: custom, factory")
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&deviceStorage, "device_storage", "/tmp/dummy_device", "Directory path of the dummy device's state storage")
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	installCmd.Flags().StringVar(&imageFile, "image", "", "File path of the firmware image to install")
	installCmd.Flags().StringVar(&target, "target", "custom", "Slot to install into: custom or factory")
	if err := installCmd.MarkFlagRequired("image"); err != nil {
		glog.Exit(err)
	}

	rootCmd.AddCommand(statusCmd, installCmd, armCmd, confirmCmd, failCmd, wipeCmd)

	if err := rootCmd.Execute(); err != nil {
		glog.Exit(err)
	}
	glog.Flush()
}
