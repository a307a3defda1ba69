/* PERQ1 - Shugart drive image.

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

   Holds a whole drive in memory as addressable sectors. The controller
   reads and writes sectors here; nothing touches the image file until an
   explicit Save.
*/

package disk

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Geometry describes the addressable layout of a drive.
type Geometry struct {
	Cylinders   int
	Heads       int
	Sectors     int // Sectors per track
	DataBytes   int // Data bytes per sector
	HeaderBytes int // Header bytes per sector
}

// ShugartSA4008 is the 24MB drive the PERQ 1 shipped with.
var ShugartSA4008 = Geometry{
	Cylinders:   202,
	Heads:       8,
	Sectors:     30,
	DataBytes:   512,
	HeaderBytes: 16,
}

// TotalSectors returns the number of addressable sectors on the drive.
func (g Geometry) TotalSectors() int {
	return g.Cylinders * g.Heads * g.Sectors
}

// Sector is one addressable unit: a header block followed by a data block.
type Sector struct {
	Header []byte
	Data   []byte
}

// NewSector returns a zeroed sector sized for the given geometry.
func NewSector(geom Geometry) Sector {
	return Sector{
		Header: make([]byte, geom.HeaderBytes),
		Data:   make([]byte, geom.DataBytes),
	}
}

// Drive is an in-memory disk image.
type Drive struct {
	geom    Geometry
	sectors []Sector // Cylinder major, then head, then sector
	path    string   // Image file the drive was loaded from, if any
}

// NewDrive returns a blank drive of the given geometry.
func NewDrive(geom Geometry) *Drive {
	drive := &Drive{geom: geom, sectors: make([]Sector, geom.TotalSectors())}
	for i := range drive.sectors {
		drive.sectors[i] = NewSector(geom)
	}
	return drive
}

// Geometry returns the drive layout.
func (d *Drive) Geometry() Geometry {
	return d.geom
}

// CylinderCount returns the number of cylinders on the drive.
func (d *Drive) CylinderCount() int {
	return d.geom.Cylinders
}

// Path returns the image file the drive was loaded from, or empty.
func (d *Drive) Path() string {
	return d.path
}

func (d *Drive) index(cyl, head, sec int) (int, bool) {
	if cyl < 0 || cyl >= d.geom.Cylinders ||
		head < 0 || head >= d.geom.Heads ||
		sec < 0 || sec >= d.geom.Sectors {
		return 0, false
	}
	return (cyl*d.geom.Heads+head)*d.geom.Sectors + sec, true
}

// GetSector returns the sector at the given address. Addresses off the
// drive return a blank sector.
func (d *Drive) GetSector(cyl, head, sec int) Sector {
	i, ok := d.index(cyl, head, sec)
	if !ok {
		return NewSector(d.geom)
	}
	return d.sectors[i]
}

// SetSector copies the sector contents into the drive at the given
// address. Addresses off the drive are dropped.
func (d *Drive) SetSector(sector Sector, cyl, head, sec int) {
	i, ok := d.index(cyl, head, sec)
	if !ok {
		return
	}
	copy(d.sectors[i].Header, sector.Header)
	copy(d.sectors[i].Data, sector.Data)
}

// Image file layout: a magic word, a format version, the geometry as five
// little-endian 16 bit words, then every sector in cylinder major order,
// header bytes before data bytes.
const (
	imageMagic   = "PQ1D"
	imageVersion = 1
)

// Load reads a drive image from a file.
func Load(path string) (*Drive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	reader := bufio.NewReader(file)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(reader, magic); err != nil {
		return nil, fmt.Errorf("disk image %s: short header", path)
	}
	if string(magic) != imageMagic {
		return nil, fmt.Errorf("disk image %s: not a drive image", path)
	}
	var hdr [6]uint16
	for i := range hdr {
		if err := binary.Read(reader, binary.LittleEndian, &hdr[i]); err != nil {
			return nil, fmt.Errorf("disk image %s: short header", path)
		}
	}
	if hdr[0] != imageVersion {
		return nil, fmt.Errorf("disk image %s: unknown version %d", path, hdr[0])
	}
	geom := Geometry{
		Cylinders:   int(hdr[1]),
		Heads:       int(hdr[2]),
		Sectors:     int(hdr[3]),
		DataBytes:   int(hdr[4]),
		HeaderBytes: int(hdr[5]),
	}
	if geom.TotalSectors() == 0 || geom.DataBytes == 0 {
		return nil, fmt.Errorf("disk image %s: bad geometry", path)
	}

	drive := NewDrive(geom)
	drive.path = path
	for i := range drive.sectors {
		if _, err := io.ReadFull(reader, drive.sectors[i].Header); err != nil {
			return nil, fmt.Errorf("disk image %s: truncated at sector %d", path, i)
		}
		if _, err := io.ReadFull(reader, drive.sectors[i].Data); err != nil {
			return nil, fmt.Errorf("disk image %s: truncated at sector %d", path, i)
		}
	}
	return drive, nil
}

// Save writes the drive image to a file.
func (d *Drive) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)

	if _, err := writer.WriteString(imageMagic); err != nil {
		return err
	}
	hdr := [6]uint16{
		imageVersion,
		uint16(d.geom.Cylinders),
		uint16(d.geom.Heads),
		uint16(d.geom.Sectors),
		uint16(d.geom.DataBytes),
		uint16(d.geom.HeaderBytes),
	}
	for _, w := range hdr {
		if err := binary.Write(writer, binary.LittleEndian, w); err != nil {
			return err
		}
	}
	for i := range d.sectors {
		if _, err := writer.Write(d.sectors[i].Header); err != nil {
			return err
		}
		if _, err := writer.Write(d.sectors[i].Data); err != nil {
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	d.path = path
	return nil
}

// CreateBlank writes a zero-filled image of the given geometry, ready to
// be attached.
func CreateBlank(path string, geom Geometry) error {
	return NewDrive(geom).Save(path)
}
