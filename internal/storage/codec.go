package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Record buffer layout, all integers little-endian:
//
//	u64 count
//	per record:
//	  u64 len, title
//	  u64 len, login
//	  u64 len, secret
//	  u8  flags (bit 0 favorite, bit 1 requires token)
//	  [u64 len, token id]   only when bit 1 is set
const (
	lenSize   = 8
	flagSize  = 1
	minRecord = 3*lenSize + flagSize

	flagFavorite = 1 << 0
	flagToken    = 1 << 1
	knownFlags   = flagFavorite | flagToken
)

var (
	ErrTruncated = errors.New("record buffer truncated")
	ErrMalformed = errors.New("record buffer malformed")
)

// EncodeRecords serializes records into a flat buffer.
// It never fails; callers are expected to pass valid records.
func EncodeRecords(records []Record) []byte {
	size := lenSize
	for _, r := range records {
		size += minRecord + len(r.Title) + len(r.Login) + len(r.Secret)
		if r.RequiresToken {
			size += lenSize + len(r.TokenID)
		}
	}

	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(records)))
	for _, r := range records {
		buf = appendString(buf, r.Title)
		buf = appendString(buf, r.Login)
		buf = appendString(buf, r.Secret)

		var flags byte
		if r.IsFavorite {
			flags |= flagFavorite
		}
		if r.RequiresToken {
			flags |= flagToken
		}
		buf = append(buf, flags)
		if r.RequiresToken {
			buf = appendString(buf, r.TokenID)
		}
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s)))
	return append(buf, s...)
}

// DecodeRecords parses a buffer produced by EncodeRecords.
// Any short read returns ErrTruncated; trailing bytes, unknown flags
// and empty titles return ErrMalformed.
func DecodeRecords(data []byte) ([]Record, error) {
	d := decoder{buf: data}

	count, err := d.readUint64()
	if err != nil {
		return nil, fmt.Errorf("record count: %w", err)
	}
	// Every record needs at least minRecord bytes; reject counts that
	// cannot fit before allocating anything.
	if count > uint64(d.remaining()/minRecord) {
		return nil, fmt.Errorf("record count %d: %w", count, ErrTruncated)
	}

	records := make([]Record, 0, count)
	for i := uint64(0); i < count; i++ {
		r, err := d.readRecord()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, r)
	}

	if d.remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes: %w", d.remaining(), ErrMalformed)
	}
	return records, nil
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.off
}

func (d *decoder) readUint64() (uint64, error) {
	if d.remaining() < lenSize {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint64(d.buf[d.off:])
	d.off += lenSize
	return v, nil
}

func (d *decoder) readString() (string, error) {
	n, err := d.readUint64()
	if err != nil {
		return "", err
	}
	if n > uint64(d.remaining()) {
		return "", ErrTruncated
	}
	s := string(d.buf[d.off : d.off+int(n)])
	d.off += int(n)
	return s, nil
}

func (d *decoder) readByte() (byte, error) {
	if d.remaining() < flagSize {
		return 0, ErrTruncated
	}
	b := d.buf[d.off]
	d.off++
	return b, nil
}

func (d *decoder) readRecord() (Record, error) {
	var r Record
	var err error

	if r.Title, err = d.readString(); err != nil {
		return r, fmt.Errorf("title: %w", err)
	}
	if r.Title == "" {
		return r, fmt.Errorf("empty title: %w", ErrMalformed)
	}
	if r.Login, err = d.readString(); err != nil {
		return r, fmt.Errorf("login: %w", err)
	}
	if r.Secret, err = d.readString(); err != nil {
		return r, fmt.Errorf("secret: %w", err)
	}

	flags, err := d.readByte()
	if err != nil {
		return r, fmt.Errorf("flags: %w", err)
	}
	if flags&^knownFlags != 0 {
		return r, fmt.Errorf("flags 0x%02x: %w", flags, ErrMalformed)
	}
	r.IsFavorite = flags&flagFavorite != 0
	r.RequiresToken = flags&flagToken != 0

	if r.RequiresToken {
		if r.TokenID, err = d.readString(); err != nil {
			return r, fmt.Errorf("token id: %w", err)
		}
	}
	return r, nil
}
