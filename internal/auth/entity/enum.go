package entity

// ChallengeStatus tracks the lifecycle of a verification challenge.
//
// A challenge is pending from issue until the correct code is submitted,
// verified until registration consumes it, and deleted afterwards. Expiry is
// enforced at read time regardless of status.
type ChallengeStatus int16

const (
	// ChallengeStatusUnknown means the status is not known / not set.
	ChallengeStatusUnknown ChallengeStatus = 0

	// ChallengeStatusPending means the code was issued but not yet verified.
	ChallengeStatusPending ChallengeStatus = 1

	// ChallengeStatusVerified means the correct code was submitted and the
	// challenge authorizes one registration.
	ChallengeStatusVerified ChallengeStatus = 2
)

func (cs ChallengeStatus) String() string {
	switch cs {
	case ChallengeStatusPending:
		return "Pending"
	case ChallengeStatusVerified:
		return "Verified"
	default:
		return "Unknown"
	}
}

// Channel is the delivery route for a verification code.
type Channel int16

const (
	// ChannelUnknown means no channel could be resolved.
	ChannelUnknown Channel = 0

	// ChannelEmail delivers codes to an email address.
	ChannelEmail Channel = 1

	// ChannelPhone delivers codes to a phone number via SMS.
	ChannelPhone Channel = 2
)

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelPhone:
		return "phone"
	default:
		return "unknown"
	}
}
