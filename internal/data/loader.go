package data

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	minFields      = 6
	maxLineLength  = 1 << 20
	readBufferSize = 64 * 1024
	byteOrderMark  = "\ufeff"
	// number of skipped line numbers included in the load summary
	reportedSkips  = 5
)

// RangeRecord is one row of the dataset: an inclusive id interval and the
// location fields attached to it.
type RangeRecord struct {
	Lower       uint32
	Upper       uint32
	CountryCode string
	CountryName string
	StateRegion string
	City        string
}

// Contains reports whether id lies within [Lower, Upper].
func (r RangeRecord) Contains(id uint32) bool {
	return r.Lower <= id && id <= r.Upper
}

// LoadDataset reads the delimited dataset at path and returns its valid
// records in file order. Malformed lines are skipped. Failure to open or read
// the file returns a *DatasetReadError and no records.
func LoadDataset(path string) ([]RangeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DatasetReadError{Path: path, Err: err}
	}
	defer f.Close()

	records, err := ParseDataset(f)
	if err != nil {
		return nil, &DatasetReadError{Path: path, Err: err}
	}
	return records, nil
}

// ParseDataset parses dataset lines from r. Lines longer than maxLineLength
// are skipped like any malformed line. The only error it returns is a read
// error from r.
func ParseDataset(r io.Reader) ([]RangeRecord, error) {
	br := bufio.NewReaderSize(r, readBufferSize)

	var (
		records []RangeRecord
		skipped []int
		lineNo  int
	)
	for {
		line, tooLong, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", lineNo+1, err)
		}
		lineNo++
		if lineNo == 1 {
			line = strings.TrimPrefix(line, byteOrderMark)
		}
		if tooLong {
			slog.Debug("skipping overlong dataset line", "line", lineNo)
			skipped = append(skipped, lineNo)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := ParseLine(line)
		if !ok {
			slog.Debug("skipping dataset line", "line", lineNo)
			skipped = append(skipped, lineNo)
			continue
		}
		records = append(records, rec)
	}

	attrs := []any{"parsed", len(records), "skipped", len(skipped)}
	if len(skipped) > 0 {
		attrs = append(attrs, "skipped_lines", skipped[:min(len(skipped), reportedSkips)])
	}
	slog.Info("dataset parsed", attrs...)

	return records, nil
}

// readLine returns the next line without its line ending. A line over
// maxLineLength is drained from br and reported with tooLong set and no text.
func readLine(br *bufio.Reader) (string, bool, error) {
	var (
		buf     []byte
		tooLong bool
	)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (len(buf) > 0 || tooLong) {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(chunk) > maxLineLength {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// ParseLine parses a single dataset line of the form
// lowerId,upperId,countryCode,countryName,stateRegion,city[,...].
// It returns false for lines with fewer than six fields, non-numeric bounds
// or a lower bound above the upper bound.
func ParseLine(line string) (RangeRecord, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < minFields {
		return RangeRecord{}, false
	}
	for i := range fields[:minFields] {
		fields[i] = cleanField(fields[i])
	}

	lower, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return RangeRecord{}, false
	}
	upper, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return RangeRecord{}, false
	}
	if lower > upper {
		return RangeRecord{}, false
	}

	return RangeRecord{
		Lower:       uint32(lower),
		Upper:       uint32(upper),
		CountryCode: fields[2],
		CountryName: fields[3],
		StateRegion: fields[4],
		City:        fields[5],
	}, true
}

// cleanField trims whitespace and one pair of enclosing double quotes.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}
