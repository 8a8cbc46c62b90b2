package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ProbeDuration reads the playback duration from an MP4 (ISO BMFF)
// stream by locating the moov/mvhd box. It returns seconds.
func ProbeDuration(r io.ReadSeeker) (float64, error) {
	moovPayload, err := findBox(r, "moov", -1)
	if err != nil {
		return 0, err
	}

	moovStart, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	if _, err := findBox(r, "mvhd", moovStart+moovPayload); err != nil {
		return 0, err
	}

	var versionAndFlags [4]byte
	if _, err := io.ReadFull(r, versionAndFlags[:]); err != nil {
		return 0, fmt.Errorf("mp4: truncated mvhd box: %w", err)
	}

	var timescale uint32
	var duration uint64

	switch version := versionAndFlags[0]; version {
	case 0:
		// creation(4) modification(4) timescale(4) duration(4)
		var fields [16]byte
		if _, err := io.ReadFull(r, fields[:]); err != nil {
			return 0, fmt.Errorf("mp4: truncated mvhd box: %w", err)
		}
		timescale = binary.BigEndian.Uint32(fields[8:12])
		duration = uint64(binary.BigEndian.Uint32(fields[12:16]))
	case 1:
		// creation(8) modification(8) timescale(4) duration(8)
		var fields [28]byte
		if _, err := io.ReadFull(r, fields[:]); err != nil {
			return 0, fmt.Errorf("mp4: truncated mvhd box: %w", err)
		}
		timescale = binary.BigEndian.Uint32(fields[16:20])
		duration = binary.BigEndian.Uint64(fields[20:28])
	default:
		return 0, fmt.Errorf("mp4: unsupported mvhd version %d", version)
	}

	if timescale == 0 {
		return 0, errors.New("mp4: mvhd timescale is zero")
	}

	return float64(duration) / float64(timescale), nil
}

// findBox scans sibling boxes from the current position until it hits one
// named boxType, leaving the reader at the start of that box's payload and
// returning the payload length. Scanning stops at end (or EOF when end is
// negative).
func findBox(r io.ReadSeeker, boxType string, end int64) (int64, error) {
	for {
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		if end >= 0 && pos >= end {
			return 0, fmt.Errorf("mp4: box %q not found", boxType)
		}

		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return 0, fmt.Errorf("mp4: box %q not found", boxType)
		}

		size := int64(binary.BigEndian.Uint32(header[:4]))
		name := string(header[4:8])
		headerLen := int64(8)

		switch size {
		case 0:
			// box extends to end of file
			fileEnd, err := r.Seek(0, io.SeekEnd)
			if err != nil {
				return 0, err
			}
			if _, err := r.Seek(pos+headerLen, io.SeekStart); err != nil {
				return 0, err
			}
			size = fileEnd - pos
		case 1:
			var large [8]byte
			if _, err := io.ReadFull(r, large[:]); err != nil {
				return 0, fmt.Errorf("mp4: truncated box header: %w", err)
			}
			size = int64(binary.BigEndian.Uint64(large[:]))
			headerLen = 16
		}

		if size < headerLen {
			return 0, errors.New("mp4: invalid box size")
		}

		if name == boxType {
			return size - headerLen, nil
		}

		if _, err := r.Seek(pos+size, io.SeekStart); err != nil {
			return 0, err
		}
	}
}
