package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Kind identifies the purpose of a frame. Values are fixed by the server and
// travel as big-endian uint32.
type Kind uint32

const (
	KindLogin       Kind = 0
	KindLogout      Kind = 1
	KindMessageSend Kind = 2
	KindMessageRecv Kind = 10
	KindDisconnect  Kind = 12
	KindSystem      Kind = 13
)

func (k Kind) String() string {
	switch k {
	case KindLogin:
		return "LOGIN"
	case KindLogout:
		return "LOGOUT"
	case KindMessageSend:
		return "MESSAGE_SEND"
	case KindMessageRecv:
		return "MESSAGE_RECV"
	case KindDisconnect:
		return "DISCONNECT"
	case KindSystem:
		return "SYSTEM"
	default:
		return fmt.Sprintf("KIND(%d)", uint32(k))
	}
}

// Record layout: [4 kind][4 timestamp][32 username][1024 body].
const (
	kindOffset      = 0
	timestampOffset = 4
	usernameOffset  = 8
	bodyOffset      = usernameOffset + UsernameSize

	// MessageSize is the exact number of bytes of every frame on the wire.
	MessageSize = bodyOffset + BodySize
)

// ErrFrameSize is returned by Decode when the input is not exactly one frame.
var ErrFrameSize = errors.New("codec: frame must be exactly 1064 bytes")

// Message is one wire record. It is a plain value: two messages compare equal
// with == exactly when their encoded frames are byte-identical.
type Message struct {
	Kind      Kind
	Timestamp uint32
	Username  Username
	Body      Body
}

// Encode builds a frame, truncating username and body to their capacity.
// It never fails; overflow bytes are dropped.
func Encode(kind Kind, timestamp uint32, username, body string) Message {
	return Message{
		Kind:      kind,
		Timestamp: timestamp,
		Username:  NewUsername(username),
		Body:      NewBody(body),
	}
}

// AppendBinary appends the encoded frame to b.
func (m Message) AppendBinary(b []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(m.Kind))
	b = binary.BigEndian.AppendUint32(b, m.Timestamp)
	b = append(b, m.Username[:]...)
	return append(b, m.Body[:]...)
}

// Bytes returns the encoded frame.
func (m Message) Bytes() []byte {
	return m.AppendBinary(make([]byte, 0, MessageSize))
}

// Decode reinterprets one complete frame. Partial frames are rejected; the
// transport is responsible for delivering whole records.
func Decode(b []byte) (Message, error) {
	if len(b) != MessageSize {
		return Message{}, fmt.Errorf("%w: got %d", ErrFrameSize, len(b))
	}
	var m Message
	m.Kind = Kind(binary.BigEndian.Uint32(b[kindOffset:]))
	m.Timestamp = binary.BigEndian.Uint32(b[timestampOffset:])
	copy(m.Username[:], b[usernameOffset:bodyOffset])
	copy(m.Body[:], b[bodyOffset:])
	return m, nil
}
