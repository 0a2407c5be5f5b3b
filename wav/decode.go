package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/faiface/enginesound"
)

// Decode takes a ReadCloser containing audio data in WAVE format and returns a StreamSeekCloser,
// which streams that audio. The Seek method will panic if rc is not io.Seeker.
//
// Only the canonical 44 byte header written by Encode is understood: PCM, 8, 16 or 24 bits per
// sample.
//
// Do not close the supplied ReadCloser, instead, use the Close method of the returned
// StreamSeekCloser when you want to release the resources.
func Decode(rc io.ReadCloser) (s enginesound.StreamSeekCloser, format enginesound.Format, err error) {
	d := decoder{rc: rc}
	defer func() { // always close rc if an error occurred
		if err != nil {
			d.rc.Close()
		}
	}()
	if err := binary.Read(rc, binary.LittleEndian, &d.h); err != nil {
		return nil, enginesound.Format{}, errors.Wrap(err, "wav")
	}
	if string(d.h.RiffMark[:]) != "RIFF" {
		return nil, enginesound.Format{}, errors.New("wav: missing RIFF at the beginning")
	}
	if string(d.h.WaveMark[:]) != "WAVE" {
		return nil, enginesound.Format{}, errors.New("wav: unsupported file type")
	}
	if string(d.h.FmtMark[:]) != "fmt " {
		return nil, enginesound.Format{}, errors.New("wav: missing format chunk marker")
	}
	if string(d.h.DataMark[:]) != "data" {
		return nil, enginesound.Format{}, errors.New("wav: missing data chunk marker")
	}
	if d.h.FormatType != 1 {
		return nil, enginesound.Format{}, errors.New("wav: unsupported format type")
	}
	if d.h.NumChans <= 0 {
		return nil, enginesound.Format{}, errors.New("wav: invalid number of channels (less than 1)")
	}
	if d.h.BitsPerSample != 8 && d.h.BitsPerSample != 16 && d.h.BitsPerSample != 24 {
		return nil, enginesound.Format{}, errors.New("wav: unsupported number of bits per sample, 8, 16 or 24 are supported")
	}
	if d.h.DataSize < 0 {
		return nil, enginesound.Format{}, errors.New("wav: unfinished file (data size not written)")
	}
	d.format = enginesound.Format{
		SampleRate:  enginesound.SampleRate(d.h.SampleRate),
		NumChannels: int(d.h.NumChans),
		Precision:   int(d.h.BitsPerSample / 8),
	}
	if int(d.h.BytesPerFrame) != d.format.Width() {
		return nil, enginesound.Format{}, errors.Errorf("wav: %d bytes per frame, expected %d", d.h.BytesPerFrame, d.format.Width())
	}
	if err := d.format.SampleRate.Validate(); err != nil {
		return nil, enginesound.Format{}, errors.Wrap(err, "wav")
	}
	return &d, d.format, nil
}

type header struct {
	RiffMark      [4]byte
	FileSize      int32
	WaveMark      [4]byte
	FmtMark       [4]byte
	FormatSize    int32
	FormatType    int16
	NumChans      int16
	SampleRate    int32
	ByteRate      int32
	BytesPerFrame int16
	BitsPerSample int16
	DataMark      [4]byte
	DataSize      int32
}

type decoder struct {
	rc     io.ReadCloser
	h      header
	format enginesound.Format
	buf    []byte
	pos    int32
	err    error
}

func (d *decoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil || d.pos >= d.h.DataSize {
		return 0, false
	}
	width := d.format.Width()
	numBytes := int32(len(samples) * width)
	if numBytes > d.h.DataSize-d.pos {
		numBytes = d.h.DataSize - d.pos
	}
	if cap(d.buf) < int(numBytes) {
		d.buf = make([]byte, numBytes)
	}
	p := d.buf[:numBytes]
	nn, err := io.ReadFull(d.rc, p)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = errors.Errorf("data ends %d bytes early", d.h.DataSize-d.pos-int32(nn))
		}
		d.err = errors.Wrap(err, "wav")
	}
	p = p[:nn-nn%width]
	for len(p) > 0 {
		var size int
		if d.format.Precision == 1 {
			samples[n], size = d.format.DecodeUnsigned(p)
		} else {
			samples[n], size = d.format.DecodeSigned(p)
		}
		p = p[size:]
		n++
	}
	d.pos += int32(nn)
	return n, n > 0 || d.err == nil
}

func (d *decoder) Err() error {
	return d.err
}

func (d *decoder) Len() int {
	return int(d.h.DataSize) / d.format.Width()
}

func (d *decoder) Position() int {
	return int(d.pos) / d.format.Width()
}

func (d *decoder) Seek(p int) error {
	seeker, ok := d.rc.(io.Seeker)
	if !ok {
		panic(fmt.Errorf("wav: seek: resource is not io.Seeker"))
	}
	if p < 0 || d.Len() < p {
		return errors.Errorf("wav: seek position %v out of range [%v, %v]", p, 0, d.Len())
	}
	pos := int32(p * d.format.Width())
	if _, err := seeker.Seek(int64(pos)+headerSize, io.SeekStart); err != nil {
		return errors.Wrap(err, "wav: seek error")
	}
	d.pos = pos
	d.err = nil
	return nil
}

func (d *decoder) Close() error {
	err := d.rc.Close()
	if err != nil {
		return errors.Wrap(err, "wav")
	}
	return nil
}
