// Package ines implements a Reader for roms in the iNES file format, used for
// the distribution of NES binary programs.
package ines

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	Magic       = "NES\x1a"
	PRGBankSize = 16384
	CHRBankSize = 8192
	TrainerSize = 512
)

var ErrInvalidMagic = errors.New("invalid magic number")

type Rom struct {
	header
	Trainer []byte // Trainer, 512 bytes if present, or empty.
	PRG     []byte // PRG is PRG ROM data (length is multiples of 16k)
	CHR     []byte // CHR is CHR ROM data (length is multiples of 8k)
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	// header
	var off int
	if err := rom.decode(buf); err != nil {
		return 0, fmt.Errorf("failed to decode header: %w", err)
	}
	off += 16

	// trainer
	if rom.HasTrainer() {
		if len(buf) < off+TrainerSize {
			return 0, fmt.Errorf("incomplete TRAINER section")
		}
		rom.Trainer = buf[off : off+TrainerSize]
		off += TrainerSize
	}

	// PRG rom data
	if len(buf) < off+rom.prgsz {
		return 0, fmt.Errorf("incomplete PRG section")
	}
	rom.PRG = buf[off : off+rom.prgsz]
	off += rom.prgsz

	// CHR rom data
	if len(buf) < off+rom.chrsz {
		return 0, fmt.Errorf("incomplete CHR section")
	}
	rom.CHR = buf[off : off+rom.chrsz]

	return int64(len(buf)), nil
}

func (hdr *header) decode(p []byte) error {
	if len(p) < 16 {
		return fmt.Errorf("too small, needs 16 bytes")
	}
	if string(p[:4]) != Magic {
		return ErrInvalidMagic
	}
	copy(hdr.raw[:], p[:16])

	hdr.prgsz = int(hdr.raw[4]) * PRGBankSize
	hdr.chrsz = int(hdr.raw[5]) * CHRBankSize
	return nil
}

type header struct {
	raw   [16]byte
	prgsz int
	chrsz int
}

// PRGBanks returns the number of 16KB PRG-ROM banks.
func (hdr *header) PRGBanks() int { return int(hdr.raw[4]) }

// CHRBanks returns the number of 8KB CHR-ROM banks.
func (hdr *header) CHRBanks() int { return int(hdr.raw[5]) }

// Has Trainer indicates the presence of a trainer section in the rom.
func (hdr *header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasPersistent indicates the presence of persistent memory in the rom.
func (hdr *header) HasPersistent() bool {
	return hdr.raw[6]&0x02 != 0
}

// VerticalMirroring reports whether nametables are mirrored vertically
// (horizontal arrangement).
func (hdr *header) VerticalMirroring() bool {
	return hdr.raw[6]&0x01 != 0
}

// IsNES20 reports whether the header uses the NES 2.0 extensions.
func (hdr *header) IsNES20() bool {
	return hdr.raw[7]&0x0C == 0x08
}

// Mapper returns the mapper number, made of the high nibbles of flags 7 and 6.
func (hdr *header) Mapper() uint8 {
	return hdr.raw[7]&0xF0 | hdr.raw[6]>>4
}

// PrintInfos writes a human readable summary of the rom header.
func (rom *Rom) PrintInfos(w io.Writer) {
	mirroring := "horizontal"
	if rom.VerticalMirroring() {
		mirroring = "vertical"
	}
	fmt.Fprintf(w, "PRG ROM:    %d x 16KB\n", rom.PRGBanks())
	fmt.Fprintf(w, "CHR ROM:    %d x 8KB\n", rom.CHRBanks())
	fmt.Fprintf(w, "mapper:     %d\n", rom.Mapper())
	fmt.Fprintf(w, "mirroring:  %s\n", mirroring)
	fmt.Fprintf(w, "trainer:    %t\n", rom.HasTrainer())
	fmt.Fprintf(w, "persistent: %t\n", rom.HasPersistent())
	fmt.Fprintf(w, "NES 2.0:    %t\n", rom.IsNES20())
}
