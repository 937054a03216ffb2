// Package ipv4 converts dotted-quad IPv4 addresses to and from the 32-bit
// identifiers used as range-lookup keys.
package ipv4

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrInvalidAddress is returned by Parse for text that is not a dotted-quad
// IPv4 address.
var ErrInvalidAddress = errors.New("invalid IPv4 address")

// Encode returns the identifier a*2^24 + b*2^16 + c*2^8 + d.
func Encode(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

// EncodeOctets is Encode over an octet array as returned by Parse.
func EncodeOctets(o [4]byte) uint32 {
	return Encode(o[0], o[1], o[2], o[3])
}

// Decode converts an identifier back to a 4-byte net.IP.
func Decode(id uint32) net.IP {
	return net.IPv4(byte(id>>24), byte(id>>16), byte(id>>8), byte(id)).To4()
}

// Parse validates s as four dot-separated groups of one to three decimal
// digits, each in 0-255. Leading zeros are accepted.
func Parse(s string) ([4]byte, error) {
	var octets [4]byte

	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return octets, fmt.Errorf("%w: Invalid IP address format", ErrInvalidAddress)
	}

	for i, p := range parts {
		if len(p) == 0 || len(p) > 3 {
			return octets, fmt.Errorf("%w: Invalid IP address format", ErrInvalidAddress)
		}
		n := 0
		for _, r := range p {
			if r < '0' || r > '9' {
				return octets, fmt.Errorf("%w: Invalid IP address format", ErrInvalidAddress)
			}
			n = n*10 + int(r-'0')
		}
		if n > 255 {
			return octets, fmt.Errorf("%w: IP address octets must be between 0-255", ErrInvalidAddress)
		}
		octets[i] = byte(n)
	}

	return octets, nil
}

// ParseID parses s and encodes it in one step.
func ParseID(s string) (uint32, error) {
	octets, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return EncodeOctets(octets), nil
}
