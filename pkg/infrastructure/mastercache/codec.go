package mastercache

import (
	"bytes"
	"encoding/gob"
)

// EncodeGob, DecodeGobAny and EncodeGobAny are the small generic
// adapters call sites use to satisfy Store.Fetch's any-typed
// encode/decode parameters for a concrete snapshot type T, so each
// master-loading call site only ever names its own type once.
func EncodeGob[T any](v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeGobAny gob-decodes data into a T and returns it as `any`, matching
// Store.Fetch's decode signature without a per-call-site closure.
func DecodeGobAny[T any](data []byte) (any, error) {
	var v T
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeGobAny mirrors EncodeGob but accepts `any`, matching
// Store.Fetch's encode signature; it type-asserts to T before encoding.
func EncodeGobAny[T any](v any) ([]byte, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		typed = zero
	}
	return EncodeGob(typed)
}
