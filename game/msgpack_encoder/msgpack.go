package mpencoder

import (
	"bytes"
	"errors"

	"github.com/beka-birhanu/vinom-haunt/game"
	"github.com/vmihailenco/msgpack/v5"
)

var _ game.Encoder = &MsgPack{}

var (
	ErrEmptyPayload = errors.New("empty payload")
)

// MsgPack encodes game messages with MessagePack, keyed by the json tags of the wire types.
type MsgPack struct{}

// MarshalGameState implements game.Encoder.
func (m *MsgPack) MarshalGameState(s game.Snapshot) ([]byte, error) {
	return marshal(&s)
}

// UnmarshalGameState implements game.Encoder.
func (m *MsgPack) UnmarshalGameState(b []byte) (game.Snapshot, error) {
	var s game.Snapshot
	err := unmarshal(b, &s)
	return s, err
}

// MarshalEvents implements game.Encoder.
func (m *MsgPack) MarshalEvents(e game.EventBatch) ([]byte, error) {
	return marshal(&e)
}

// UnmarshalEvents implements game.Encoder.
func (m *MsgPack) UnmarshalEvents(b []byte) (game.EventBatch, error) {
	var e game.EventBatch
	err := unmarshal(b, &e)
	return e, err
}

// MarshalAction implements game.Encoder.
func (m *MsgPack) MarshalAction(a game.Action) ([]byte, error) {
	return marshal(&a)
}

// UnmarshalAction implements game.Encoder.
func (m *MsgPack) UnmarshalAction(b []byte) (game.Action, error) {
	var a game.Action
	err := unmarshal(b, &a)
	return a, err
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetOmitEmpty(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshal(b []byte, v any) error {
	if len(b) == 0 {
		return ErrEmptyPayload
	}
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
