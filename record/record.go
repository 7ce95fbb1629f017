package record

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/swdee/go-lanefind/tracker"
)

// magic identifies a lane recording file
const magic = "LANEREC1"

// maxRecordSize bounds the payload length accepted when reading
const maxRecordSize = 16 * 1024 * 1024

// ErrBadMagic is returned when reading a file that is not a lane recording
var ErrBadMagic = errors.New("not a lane recording")

// Header is the first record of a recording
type Header struct {
	Session string    `cbor:"session"`
	Created time.Time `cbor:"created"`
	Source  string    `cbor:"source"`
}

// Curve is a recorded lane curve
type Curve struct {
	A float64 `cbor:"a"`
	B float64 `cbor:"b"`
	C float64 `cbor:"c"`
}

// FrameRecord is the recorded telemetry of a single frame
type FrameRecord struct {
	Index       int     `cbor:"index"`
	Timestamp   int64   `cbor:"ts"`
	OK          bool    `cbor:"ok"`
	Mode        string  `cbor:"mode,omitempty"`
	Error       string  `cbor:"error,omitempty"`
	Held        bool    `cbor:"held,omitempty"`
	Left        Curve   `cbor:"left"`
	Right       Curve   `cbor:"right"`
	LeftPixels  int     `cbor:"left_px"`
	RightPixels int     `cbor:"right_px"`
	LeftRadius  float64 `cbor:"left_radius"`
	RightRadius float64 `cbor:"right_radius"`
	Offset      float64 `cbor:"offset"`
}

// NewFrameRecord builds the record of a frame from the tracker result, or
// from the tracking error when the frame failed
func NewFrameRecord(index int, res *tracker.Result, err error, held bool) FrameRecord {

	rec := FrameRecord{
		Index:     index,
		Timestamp: time.Now().UnixNano(),
		Held:      held,
	}

	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	if res == nil {
		return rec
	}

	rec.OK = true
	rec.Mode = res.Mode.String()
	rec.Left = Curve{res.Model.Left.A, res.Model.Left.B, res.Model.Left.C}
	rec.Right = Curve{res.Model.Right.A, res.Model.Right.B, res.Model.Right.C}
	rec.LeftPixels = res.Left.Len()
	rec.RightPixels = res.Right.Len()
	rec.LeftRadius = res.Metrics.LeftRadius
	rec.RightRadius = res.Metrics.RightRadius
	rec.Offset = res.Metrics.CenterOffset

	return rec
}

// Writer writes a lane recording, records are CBOR encoded and framed with
// a little endian uint32 length
type Writer struct {
	mu     sync.Mutex
	closer io.Closer
	w      *bufio.Writer
	header Header
}

// Create creates a recording file at path
func Create(path, source string) (*Writer, error) {

	f, err := os.Create(path)

	if err != nil {
		return nil, fmt.Errorf("error creating recording: %w", err)
	}

	w, err := NewWriter(f, source)

	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w.closer = f

	return w, nil
}

// NewWriter starts a recording on w with a new session id
func NewWriter(w io.Writer, source string) (*Writer, error) {

	rw := &Writer{
		w: bufio.NewWriterSize(w, 64*1024),
		header: Header{
			Session: uuid.NewString(),
			Created: time.Now().UTC(),
			Source:  source,
		},
	}

	if _, err := rw.w.WriteString(magic); err != nil {
		return nil, err
	}

	if err := rw.write(rw.header); err != nil {
		return nil, err
	}

	return rw, rw.w.Flush()
}

// Session returns the recording session id
func (r *Writer) Session() string {
	return r.header.Session
}

// Record appends a frame record
func (r *Writer) Record(rec FrameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return fmt.Errorf("recording writer is closed")
	}

	return r.write(rec)
}

func (r *Writer) write(v any) error {

	payload, err := cbor.Marshal(v)

	if err != nil {
		return fmt.Errorf("error encoding record: %w", err)
	}

	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))

	if _, err := r.w.Write(size[:]); err != nil {
		return err
	}

	_, err = r.w.Write(payload)

	return err
}

// Close flushes the recording and closes the file when opened by Create
func (r *Writer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return nil
	}

	err := r.w.Flush()
	r.w = nil

	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}

	return err
}

// Reader reads a lane recording
type Reader struct {
	r      *bufio.Reader
	header Header
}

// NewReader reads the recording header from r
func NewReader(r io.Reader) (*Reader, error) {

	rr := &Reader{r: bufio.NewReader(r)}

	head := make([]byte, len(magic))

	if _, err := io.ReadFull(rr.r, head); err != nil {
		return nil, fmt.Errorf("error reading magic: %w", err)
	}

	if string(head) != magic {
		return nil, fmt.Errorf("%w: unexpected magic %q", ErrBadMagic, string(head))
	}

	if err := rr.read(&rr.header); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	return rr, nil
}

// Header returns the recording header
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next frame record, io.EOF is returned after the last
func (r *Reader) Next() (FrameRecord, error) {
	var rec FrameRecord
	err := r.read(&rec)
	return rec, err
}

func (r *Reader) read(v any) error {

	var size [4]byte

	if _, err := io.ReadFull(r.r, size[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("truncated record header: %w", err)
		}
		return err
	}

	n := binary.LittleEndian.Uint32(size[:])

	if n > maxRecordSize {
		return fmt.Errorf("record size %d exceeds %d", n, maxRecordSize)
	}

	payload := make([]byte, n)

	if _, err := io.ReadFull(r.r, payload); err != nil {
		return fmt.Errorf("truncated record: %w", err)
	}

	return cbor.Unmarshal(payload, v)
}

// ReadAll reads every record of the recording file at path
func ReadAll(path string) (Header, []FrameRecord, error) {

	f, err := os.Open(path)

	if err != nil {
		return Header{}, nil, fmt.Errorf("error opening recording: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f)

	if err != nil {
		return Header{}, nil, err
	}

	var recs []FrameRecord

	for {
		rec, err := r.Next()

		if errors.Is(err, io.EOF) {
			return r.Header(), recs, nil
		}

		if err != nil {
			return r.Header(), recs, err
		}

		recs = append(recs, rec)
	}
}
