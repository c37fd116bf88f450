package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/besuhoff/skyline-blaster-go/internal/types"
)

var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownMessage = errors.New("unknown message type")
)

// Codec converts between wire frames and messages. Every codec carries the
// same {type, payload} envelope; they only differ in framing.
type Codec interface {
	Name() string
	// Binary reports whether frames go out as binary websocket messages
	Binary() bool
	Encode(msg types.Message) ([]byte, error)
	Decode(data []byte) (types.Message, error)
}

// CodecFor picks a codec from the ?protocol= query value
func CodecFor(name string) Codec {
	switch name {
	case "binary", "proto", "protobuf":
		return ProtoCodec{}
	case "msgpack":
		return MsgpackCodec{}
	default:
		return JSONCodec{}
	}
}

// JSONCodec sends text frames
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Encode(msg types.Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON message: %w", err)
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) (types.Message, error) {
	return parseEnvelope(data)
}

// ProtoCodec frames the envelope as a google.protobuf.Struct
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return "protobuf" }
func (ProtoCodec) Binary() bool { return true }

func (ProtoCodec) Encode(msg types.Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshaling proto message: %w", err)
	}
	var envelope structpb.Struct
	if err := protojson.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("building proto struct: %w", err)
	}
	out, err := proto.Marshal(&envelope)
	if err != nil {
		return nil, fmt.Errorf("marshaling proto message: %w", err)
	}
	return out, nil
}

func (ProtoCodec) Decode(data []byte) (types.Message, error) {
	var envelope structpb.Struct
	if err := proto.Unmarshal(data, &envelope); err != nil {
		return types.Message{}, fmt.Errorf("%w: unmarshaling proto message: %v", ErrMalformed, err)
	}
	jsonData, err := protojson.Marshal(&envelope)
	if err != nil {
		return types.Message{}, fmt.Errorf("%w: converting proto message: %v", ErrMalformed, err)
	}
	return parseEnvelope(jsonData)
}

// MsgpackCodec frames the envelope as MessagePack, keyed like the JSON form
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Encode(msg types.Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(msg); err != nil {
		return nil, fmt.Errorf("marshaling msgpack message: %w", err)
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Decode(data []byte) (types.Message, error) {
	var envelope map[string]interface{}
	if err := msgpack.Unmarshal(data, &envelope); err != nil {
		return types.Message{}, fmt.Errorf("%w: unmarshaling msgpack message: %v", ErrMalformed, err)
	}
	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return types.Message{}, fmt.Errorf("%w: converting msgpack message: %v", ErrMalformed, err)
	}
	return parseEnvelope(jsonData)
}

type inEnvelope struct {
	Type    types.MessageType `json:"type"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

// parseEnvelope decodes a JSON envelope into a message with a typed payload
func parseEnvelope(data []byte) (types.Message, error) {
	var envelope inEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return types.Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	msg := types.Message{Type: envelope.Type}
	var err error
	switch envelope.Type {
	case types.MsgTypeNewPlayer:
		var payload types.JoinPayload
		err = decodePayload(envelope.Payload, &payload, true)
		msg.Payload = payload
	case types.MsgTypePlayerMovement:
		var payload types.MovePayload
		err = decodePayload(envelope.Payload, &payload, false)
		msg.Payload = payload
	case types.MsgTypeShoot:
		var payload types.ShotPayload
		err = decodePayload(envelope.Payload, &payload, false)
		msg.Payload = payload
	case types.MsgTypeSaber:
		var payload types.SaberPayload
		err = decodePayload(envelope.Payload, &payload, false)
		msg.Payload = payload
	default:
		return types.Message{}, fmt.Errorf("%w: %q", ErrUnknownMessage, envelope.Type)
	}
	if err != nil {
		return types.Message{}, err
	}
	return msg, nil
}

func decodePayload(raw json.RawMessage, target interface{}, optional bool) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if optional {
			return nil
		}
		return fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
