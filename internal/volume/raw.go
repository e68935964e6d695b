package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// LoadRaw reads a headerless little-endian float32 volume of nx×ny×nz
// values in x-major order. The input must hold exactly that many values;
// short or trailing data means the dimensions are wrong.
func LoadRaw(r io.Reader, nx, ny, nz int) (*Volume, error) {
	v, err := New(nx, ny, nz)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(r)
	if err := binary.Read(br, binary.LittleEndian, v.Data); err != nil {
		return nil, fmt.Errorf("read raw volume %dx%dx%d: %w", nx, ny, nz, err)
	}
	switch _, err := br.ReadByte(); {
	case err == io.EOF:
		return v, nil
	case err != nil:
		return nil, fmt.Errorf("read raw volume %dx%dx%d: %w", nx, ny, nz, err)
	default:
		return nil, fmt.Errorf("read raw volume %dx%dx%d: trailing data after %d values", nx, ny, nz, len(v.Data))
	}
}

// LoadRawFile opens path and reads it with LoadRaw.
func LoadRawFile(path string, nx, ny, nz int) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open volume file: %w", err)
	}
	defer f.Close()
	return LoadRaw(f, nx, ny, nz)
}

// WriteRaw writes v in the LoadRaw format.
func WriteRaw(w io.Writer, v *Volume) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, v.Data); err != nil {
		return fmt.Errorf("write raw volume: %w", err)
	}
	return bw.Flush()
}
