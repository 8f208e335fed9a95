package codec

import "bytes"

const (
	// UsernameSize is the width of the username field, terminator included.
	UsernameSize = 32
	// BodySize is the width of the body field, terminator included.
	BodySize = 1024

	// MaxUsernameLen and MaxBodyLen are the usable byte capacities.
	MaxUsernameLen = UsernameSize - 1
	MaxBodyLen     = BodySize - 1
)

// Username is the fixed-width, NUL padded username field.
type Username [UsernameSize]byte

// Body is the fixed-width, NUL padded message field.
type Body [BodySize]byte

// NewUsername keeps the first MaxUsernameLen bytes of s.
func NewUsername(s string) Username {
	var u Username
	copy(u[:MaxUsernameLen], s)
	return u
}

// NewBody keeps the first MaxBodyLen bytes of s.
func NewBody(s string) Body {
	var b Body
	copy(b[:MaxBodyLen], s)
	return b
}

// String returns the text up to the first NUL.
func (u Username) String() string { return cstring(u[:]) }

// String returns the text up to the first NUL.
func (b Body) String() string { return cstring(b[:]) }

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
