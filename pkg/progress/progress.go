// Package progress provides Reader and Writer
package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Reader consistently writes the number of bytes read to Progress.
type Reader struct {
	io.Reader       // Reader to read from
	Bytes     int64 // total number of bytes read (so far)

	// Total is the expected number of bytes, or 0 when unknown.
	Total int64

	Rewritable
}

func (cr *Reader) Read(bytes []byte) (int, error) {
	count, err := cr.Reader.Read(bytes)
	cr.Bytes += int64(count)
	if cr.Total > 0 {
		cr.Rewritable.Write(fmt.Sprintf("Read %s of %s", humanize.Bytes(uint64(cr.Bytes)), humanize.Bytes(uint64(cr.Total))))
	} else {
		cr.Rewritable.Write(fmt.Sprintf("Read %s", humanize.Bytes(uint64(cr.Bytes))))
	}
	return count, err
}

// Writer consistently writes the number of bytes written to Progress.
type Writer struct {
	io.Writer       // Writer to write to
	Bytes     int64 // Total number of bytes written

	Rewritable
}

func (cw *Writer) Write(bytes []byte) (int, error) {
	cw.Bytes += int64(len(bytes))
	cw.Rewritable.Write(fmt.Sprintf("Wrote %s", humanize.Bytes(uint64(cw.Bytes))))
	return cw.Writer.Write(bytes)
}

// DefaultFlushInterval is a reasonable default flush interval
const DefaultFlushInterval = time.Second / 30

// Rewritable repeatedly overwrites a single terminal line.
// A Rewritable with a nil Writer discards everything.
type Rewritable struct {
	Writer io.Writer

	FlushInterval  time.Duration // minimum time between flushes of the progress
	lastFlush      time.Time     // last time we flushed
	longestContent int           // longest content ever flushed
	content        string        // current content
}

func (rw *Rewritable) Write(value string) {
	rw.content = value
	rw.Flush(false)
}

func (rw *Rewritable) Flush(force bool) {
	if rw.Writer == nil {
		return
	}
	if !(force || time.Since(rw.lastFlush) > rw.FlushInterval) {
		return
	}

	if len(rw.content) >= rw.longestContent {
		rw.longestContent = len(rw.content)
	}

	// blank out leftovers of longer previous content
	blank := strings.Repeat(" ", rw.longestContent-len(rw.content))
	fmt.Fprintf(rw.Writer, "\r%s%s", rw.content, blank)

	rw.lastFlush = time.Now()
}

func (rw *Rewritable) Close() {
	if rw.Writer == nil {
		return
	}
	rw.content = ""
	rw.Flush(true)
	rw.Writer.Write([]byte("\r"))
}
