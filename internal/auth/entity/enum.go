package entity

import "strings"

// Channel is the delivery channel behind a login identifier.
type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelMobile  Channel = 1
	ChannelEmail   Channel = 2
)

func (c Channel) String() string {
	switch c {
	case ChannelMobile:
		return "sms"
	case ChannelEmail:
		return "email"
	default:
		return "unknown"
	}
}

// ChannelOfIdentifier classifies an already-validated identifier.
// Anything containing '@' is an email address, everything else a mobile
// number.
func ChannelOfIdentifier(identifier string) Channel {
	if identifier == "" {
		return ChannelUnknown
	}
	if strings.Contains(identifier, "@") {
		return ChannelEmail
	}
	return ChannelMobile
}
