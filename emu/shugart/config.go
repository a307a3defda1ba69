/* PERQ1 - Shugart controller configuration and console hooks.

   Copyright 2025, Howard Kestrel

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   HOWARD KESTREL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package shugart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	config "github.com/hkestrel/perq1/config/configparser"
	"github.com/hkestrel/perq1/emu/core"
	"github.com/hkestrel/perq1/emu/disk"
)

var seekStateNames = [...]string{
	"WaitForStepSet", "WaitForStepRelease", "SeekDone",
}

// Reset restores power-on state. The attached image is untouched and the
// index cycle keeps running.
func (hd *Controller) Reset() {
	hd.clearInterrupt()
	hd.powerOn()
}

// Shutdown releases the controller. The image is deliberately not
// written back; only an explicit Save persists it.
func (hd *Controller) Shutdown() {
}

// Attach loads a drive image and makes the unit ready.
func (hd *Controller) Attach(path string) error {
	drive, err := disk.Load(path)
	if err != nil {
		return err
	}
	hd.drive = drive
	hd.unitReady = 1
	return nil
}

// Detach drops the drive. The unit goes not-ready.
func (hd *Controller) Detach() error {
	hd.drive = nil
	hd.unitReady = 0
	return nil
}

// Save writes the in-memory image back to a file. With an empty path the
// file the image was loaded from is reused.
func (hd *Controller) Save(path string) error {
	if hd.drive == nil {
		return errors.New("shugart: no drive attached")
	}
	if path == "" {
		path = hd.drive.Path()
	}
	if path == "" {
		return errors.New("shugart: no image file to save to")
	}
	return hd.drive.Save(path)
}

// Show describes the controller state for the console.
func (hd *Controller) Show() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "status %#04x", hd.ReadStatus())
	if hd.status == statusBusy {
		sb.WriteString(" (busy)")
	} else {
		sb.WriteString(" (done)")
	}
	fmt.Fprintf(&sb, "\ntarget cyl/head/sec %d/%d/%d", hd.cylinder, hd.head, hd.sector)
	fmt.Fprintf(&sb, "\nhead at cylinder %d, seek %s",
		hd.physCylinder, seekStateNames[hd.seekState])
	fmt.Fprintf(&sb, "\nheader addr %#08x data addr %#08x",
		hd.headerAddr(), hd.dataAddr())
	fmt.Fprintf(&sb, "\nserial %#04x%04x block %#06x",
		hd.serialHigh, hd.serialLow, hd.blockNumber)
	if hd.drive == nil {
		sb.WriteString("\nno drive attached")
	} else {
		geom := hd.drive.Geometry()
		fmt.Fprintf(&sb, "\ndrive %d/%d/%d", geom.Cylinders, geom.Heads, geom.Sectors)
		if hd.drive.Path() != "" {
			fmt.Fprintf(&sb, " image %s", hd.drive.Path())
		}
	}
	return sb.String()
}

// Register the controller with the config parser.
func init() {
	config.RegisterModel("SHUGART", config.TypeModel, create)
}

// create builds the controller from a config statement:
//
//	SHUGART 0 FILE=sys.pqd
//	SHUGART 0 NEW FILE=blank.pqd CYL=202 HEADS=8 SECTORS=30
//
// Without a FILE option the controller gets a blank in-memory drive.
func create(unit uint16, _ string, options []config.Option) error {
	if unit != 0 {
		return errors.New("shugart: only unit 0 is supported")
	}

	geom := disk.ShugartSA4008
	path := ""
	blank := false
	for _, option := range options {
		var err error
		switch strings.ToUpper(option.Name) {
		case "FILE":
			if option.EqualOpt == "" {
				return errors.New("shugart FILE option missing filename")
			}
			path = option.EqualOpt
		case "NEW":
			blank = true
		case "CYL", "CYLINDERS":
			geom.Cylinders, err = geomValue(option)
		case "HEADS":
			geom.Heads, err = geomValue(option)
		case "SEC", "SECTORS":
			geom.Sectors, err = geomValue(option)
		default:
			return errors.New("shugart invalid option: " + option.Name)
		}
		if err != nil {
			return err
		}
	}

	var drive *disk.Drive
	if path != "" {
		if blank {
			if err := disk.CreateBlank(path, geom); err != nil {
				return err
			}
		}
		var err error
		drive, err = disk.Load(path)
		if err != nil {
			return err
		}
	} else {
		drive = disk.NewDrive(geom)
	}

	hd := New(drive, core.Scheduler(), core.Interrupts(), core.Memory())
	return core.AddDevice("SHUGART", hd)
}

func geomValue(option config.Option) (int, error) {
	v, err := strconv.Atoi(option.EqualOpt)
	if err != nil || v <= 0 {
		return 0, errors.New("shugart option " + option.Name +
			" needs a positive number: " + option.EqualOpt)
	}
	return v, nil
}
