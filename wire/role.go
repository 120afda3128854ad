package wire

import "bytes"

// Role - a role announcement broadcast whenever a peer's role or
// adaptive factor changes; Factor is 0 for Observer
type Role struct {
	Role      string
	Factor    float64
	Timestamp int64 // unix nanoseconds
}

// EncodeRole - serialize a Role
func EncodeRole(r Role) []byte {
	var buf bytes.Buffer
	writeBytes(&buf, []byte(r.Role))
	writeFloat64(&buf, r.Factor)
	writeInt64(&buf, r.Timestamp)
	return buf.Bytes()
}

// DecodeRole - inverse of EncodeRole
func DecodeRole(buffer []byte) (Role, error) {
	r := bytes.NewReader(buffer)

	role, err := readBytes(r)
	if nil != err {
		return Role{}, err
	}
	factor, err := readFloat64(r)
	if nil != err {
		return Role{}, err
	}
	timestamp, err := readInt64(r)
	if nil != err {
		return Role{}, err
	}

	return Role{Role: string(role), Factor: factor, Timestamp: timestamp}, nil
}
