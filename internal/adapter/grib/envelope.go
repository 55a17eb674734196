package grib

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/actris-cloudnet/model-munger/internal/domain"
)

// messageMeta carries the per-field GRIB2 envelope values the payload
// decoder does not surface: the reference time of the run, the forecast
// lead, and the grid definition family.
type messageMeta struct {
	refTime  time.Time
	leadHour int
	gridType domain.GridType
}

// scanMessages walks the GRIB2 container structure and returns one entry
// per field, in file order. A message holds one field per product
// definition section, so messages with repeated section 4 sequences yield
// multiple entries. Only envelope sections are parsed; packed data is
// skipped by section length.
func scanMessages(r io.Reader) ([]messageMeta, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	var metas []messageMeta

	for msg := 0; ; msg++ {
		indicator := make([]byte, 16)
		if _, err := io.ReadFull(br, indicator); err != nil {
			if err == io.EOF {
				return metas, nil
			}
			return nil, fmt.Errorf("message %d: truncated indicator: %w", msg, err)
		}
		if !bytes.Equal(indicator[:4], []byte("GRIB")) {
			return nil, fmt.Errorf("message %d: bad magic %q", msg, indicator[:4])
		}
		if edition := indicator[7]; edition != 2 {
			return nil, fmt.Errorf("message %d: GRIB edition %d, want 2", msg, edition)
		}

		var refTime time.Time
		var gridType domain.GridType
		for {
			head := make([]byte, 4)
			if _, err := io.ReadFull(br, head); err != nil {
				return nil, fmt.Errorf("message %d: truncated section header: %w", msg, err)
			}
			if bytes.Equal(head, []byte("7777")) {
				break
			}
			length := binary.BigEndian.Uint32(head)
			if length < 5 {
				return nil, fmt.Errorf("message %d: section length %d too short", msg, length)
			}
			section := make([]byte, length)
			copy(section, head)
			if _, err := io.ReadFull(br, section[4:]); err != nil {
				return nil, fmt.Errorf("message %d: truncated section: %w", msg, err)
			}

			switch number := section[4]; number {
			case 1:
				t, err := parseIdentification(section)
				if err != nil {
					return nil, fmt.Errorf("message %d: %w", msg, err)
				}
				refTime = t
			case 3:
				g, err := parseGridDefinition(section)
				if err != nil {
					return nil, fmt.Errorf("message %d: %w", msg, err)
				}
				gridType = g
			case 4:
				lead, err := parseProductDefinition(section)
				if err != nil {
					return nil, fmt.Errorf("message %d: %w", msg, err)
				}
				metas = append(metas, messageMeta{refTime: refTime, leadHour: lead, gridType: gridType})
			}
		}
	}
}

// parseIdentification reads the reference time from an identification
// section (octets 13 through 19).
func parseIdentification(s []byte) (time.Time, error) {
	if len(s) < 19 {
		return time.Time{}, fmt.Errorf("identification section length %d too short", len(s))
	}
	year := int(binary.BigEndian.Uint16(s[12:14]))
	month := time.Month(s[14])
	day := int(s[15])
	hour := int(s[16])
	minute := int(s[17])
	second := int(s[18])
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC), nil
}

// parseGridDefinition classifies the grid from the template number
// (octets 13 and 14) and the optional-list indicator (octet 11), which is
// non-zero for quasi-regular variants with varying row lengths.
func parseGridDefinition(s []byte) (domain.GridType, error) {
	if len(s) < 14 {
		return "", fmt.Errorf("grid definition section length %d too short", len(s))
	}
	reduced := s[10] != 0
	template := binary.BigEndian.Uint16(s[12:14])
	switch template {
	case 0:
		if reduced {
			return domain.GridReducedLL, nil
		}
		return domain.GridRegularLL, nil
	case 40:
		if reduced {
			return domain.GridReducedGG, nil
		}
		return domain.GridRegularGG, nil
	default:
		return domain.GridType(fmt.Sprintf("template_%d", template)), nil
	}
}

// parseProductDefinition reads the forecast lead from a product definition
// section: the time unit indicator (octet 18) and the forecast time in
// that unit (octets 19 through 22). The leading octets are shared by every
// point-in-time and statistical template this data source uses.
func parseProductDefinition(s []byte) (int, error) {
	if len(s) < 22 {
		template := uint16(0)
		if len(s) >= 9 {
			template = binary.BigEndian.Uint16(s[7:9])
		}
		return 0, fmt.Errorf("product definition template %d length %d too short", template, len(s))
	}
	unit := s[17]
	forecastTime := int(binary.BigEndian.Uint32(s[18:22]))
	switch unit {
	case 0: // minutes
		if forecastTime%60 != 0 {
			return 0, fmt.Errorf("forecast time %d min is not a whole hour", forecastTime)
		}
		return forecastTime / 60, nil
	case 1: // hours
		return forecastTime, nil
	case 2: // days
		return forecastTime * 24, nil
	default:
		return 0, fmt.Errorf("unsupported forecast time unit %d", unit)
	}
}
