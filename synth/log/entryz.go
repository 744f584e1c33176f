package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry built field by field and emitted with End. Modules
// return a nil *EntryZ when the level is disabled; all methods accept a nil
// receiver and do nothing.
type EntryZ struct {
	mod Module
	lvl Level
	msg string

	zfbuf [maxZFields]ZField
	zfidx int
}

var entryPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	e := entryPool.Get().(*EntryZ)
	e.zfidx = 0
	return e
}

func (z *EntryZ) add() *ZField {
	if z.zfidx == maxZFields {
		return nil
	}
	f := &z.zfbuf[z.zfidx]
	z.zfidx++
	*f = ZField{}
	return f
}

func (z *EntryZ) String(key, val string) *EntryZ {
	if z == nil {
		return nil
	}
	if f := z.add(); f != nil {
		f.Type, f.Key, f.String = FieldTypeString, key, val
	}
	return z
}

func (z *EntryZ) Stringer(key string, val fmt.Stringer) *EntryZ {
	if z == nil {
		return nil
	}
	if f := z.add(); f != nil {
		f.Type, f.Key, f.Interface = FieldTypeStringer, key, val
	}
	return z
}

func (z *EntryZ) Bool(key string, val bool) *EntryZ {
	if z == nil {
		return nil
	}
	if f := z.add(); f != nil {
		f.Type, f.Key, f.Boolean = FieldTypeBool, key, val
	}
	return z
}

func (z *EntryZ) Int(key string, val int) *EntryZ {
	if z == nil {
		return nil
	}
	if f := z.add(); f != nil {
		f.Type, f.Key, f.Integer = FieldTypeInt, key, uint64(val)
	}
	return z
}

func (z *EntryZ) Uint(key string, val uint64) *EntryZ {
	if z == nil {
		return nil
	}
	if f := z.add(); f != nil {
		f.Type, f.Key, f.Integer = FieldTypeUint, key, val
	}
	return z
}

func (z *EntryZ) Float(key string, val float64) *EntryZ {
	if z == nil {
		return nil
	}
	if f := z.add(); f != nil {
		f.Type, f.Key, f.Float = FieldTypeFloat, key, val
	}
	return z
}

func (z *EntryZ) Duration(key string, val time.Duration) *EntryZ {
	if z == nil {
		return nil
	}
	if f := z.add(); f != nil {
		f.Type, f.Key, f.Duration = FieldTypeDuration, key, val
	}
	return z
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	if z == nil {
		return nil
	}
	if f := z.add(); f != nil {
		f.Type, f.Key, f.Error = FieldTypeError, key, err
	}
	return z
}

// End emits the entry and recycles it. The entry must not be used afterwards.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	fields := make(logrus.Fields, z.zfidx+1)
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	for k, v := range contextFields() {
		fields[k] = v
	}
	fields["_mod"] = z.mod.String()

	entry := logrus.StandardLogger().WithFields(fields)
	msg, lvl := z.msg, z.lvl
	entryPool.Put(z)

	switch lvl {
	case DebugLevel:
		entry.Debug(msg)
	case InfoLevel:
		entry.Info(msg)
	case WarnLevel:
		entry.Warn(msg)
	case ErrorLevel:
		entry.Error(msg)
	case FatalLevel:
		entry.Fatal(msg)
	default:
		entry.Panic(msg)
	}
}
