package minblep

import (
	"fmt"
	"io"
	"os"

	"github.com/go-faster/jx"
)

// Kernel tables are stored as JSON:
//
//	{"zero_crossings":16,"oversampling":64,"table":[...]}

// WriteTable writes k to w.
func WriteTable(w io.Writer, k *Kernel) error {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("zero_crossings")
	e.Int(ZeroCrossings)
	e.FieldStart("oversampling")
	e.Int(OverSampling)
	e.FieldStart("table")
	e.ArrStart()
	for _, v := range k.table {
		e.Float64(float64(v))
	}
	e.ArrEnd()
	e.ObjEnd()

	_, err := w.Write(e.Bytes())
	return err
}

// ReadTable reads a kernel table written by WriteTable. Tables built for
// another number of zero crossings or another oversampling factor are
// rejected.
func ReadTable(r io.Reader) (*Kernel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	zc, ovs := -1, -1
	table := make([]float32, 0, TableLen)

	d := jx.DecodeBytes(data)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "zero_crossings":
			zc, err = d.Int()
		case "oversampling":
			ovs, err = d.Int()
		case "table":
			err = d.Arr(func(d *jx.Decoder) error {
				v, err := d.Float64()
				if err != nil {
					return err
				}
				table = append(table, float32(v))
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("minblep: decode kernel table: %w", err)
	}

	if zc != ZeroCrossings || ovs != OverSampling {
		return nil, fmt.Errorf("minblep: kernel table is %d zero crossings x%d oversampling, want %d x%d",
			zc, ovs, ZeroCrossings, OverSampling)
	}
	return NewKernel(table)
}

// LoadFile reads a kernel table from the file at path.
func LoadFile(path string) (*Kernel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	k, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return k, nil
}

// SaveFile writes k to the file at path.
func SaveFile(path string, k *Kernel) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTable(f, k); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
