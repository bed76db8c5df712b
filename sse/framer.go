package sse

import "bytes"

var (
	separator = []byte("\n\n")
	lf        = []byte("\n")
)

// Record is one event-stream record: the lines between two blank lines.
type Record struct {
	// Event is the value of the last "event:" line, if any.
	Event string
	// Data is the value of all "data:" lines joined by newlines.
	Data string
}

// maxRetained caps the buffer capacity kept after a large record.
const maxRetained = 64 << 10

// Framer splits an event stream delivered in arbitrary chunks into records.
// Bytes after the last separator are retained until more input or Flush.
//
// Splitting happens on bytes, so a multi-byte UTF-8 sequence can never be
// cut: neither separator byte occurs inside one. CRLF line endings are
// normalized in a single left-to-right pass; a CR at the end of a chunk is
// held back until the next byte shows whether it starts a CRLF. Each byte is
// scanned for a separator once, so a record split over many writes costs
// time linear in its size.
//
// The zero value is ready to use.
type Framer struct {
	pending []byte
	scanned int // prefix of pending known to hold no separator
	heldCR  bool
}

// Write appends chunk and returns every record it completes, in order.
// Records without a data line (comments, keep-alives) are dropped.
func (f *Framer) Write(chunk []byte) []Record {
	f.append(chunk)

	var records []Record
	start := 0
	from := max(0, f.scanned-len(separator)+1)
	for {
		i := bytes.Index(f.pending[from:], separator)
		if i < 0 {
			break
		}
		end := from + i
		if r, ok := parseRecord(f.pending[start:end]); ok {
			records = append(records, r)
		}
		start = end + len(separator)
		from = start
	}
	if start > 0 {
		rest := f.pending[start:]
		if cap(f.pending) > maxRetained {
			f.pending = append([]byte(nil), rest...)
		} else {
			f.pending = f.pending[:copy(f.pending, rest)]
		}
	}
	f.scanned = len(f.pending)
	return records
}

func (f *Framer) append(chunk []byte) {
	for len(chunk) > 0 {
		if f.heldCR {
			f.heldCR = false
			if chunk[0] == '\n' {
				f.pending = append(f.pending, '\n')
				chunk = chunk[1:]
				continue
			}
			f.pending = append(f.pending, '\r')
		}
		i := bytes.IndexByte(chunk, '\r')
		if i < 0 {
			f.pending = append(f.pending, chunk...)
			return
		}
		f.pending = append(f.pending, chunk[:i]...)
		f.heldCR = true
		chunk = chunk[i+1:]
	}
}

// Flush returns the trailing record, if any, as if the stream had ended with
// a separator, and empties the buffer.
func (f *Framer) Flush() []Record {
	raw := bytes.TrimRight(f.pending, "\r\n")
	f.pending = nil
	f.scanned = 0
	f.heldCR = false
	if len(raw) == 0 {
		return nil
	}
	if r, ok := parseRecord(raw); ok {
		return []Record{r}
	}
	return nil
}

// Pending returns the number of buffered bytes not yet framed.
func (f *Framer) Pending() int {
	n := len(f.pending)
	if f.heldCR {
		n++
	}
	return n
}

func parseRecord(raw []byte) (Record, bool) {
	var (
		r       Record
		data    [][]byte
		hasData bool
	)
	for _, line := range bytes.Split(raw, lf) {
		if len(line) == 0 || line[0] == ':' {
			continue
		}
		field, value, _ := bytes.Cut(line, []byte(":"))
		value = bytes.TrimPrefix(value, []byte(" "))
		switch string(field) {
		case "data":
			data = append(data, value)
			hasData = true
		case "event":
			r.Event = string(value)
		}
	}
	if !hasData {
		return Record{}, false
	}
	r.Data = string(bytes.Join(data, lf))
	return r, true
}
