package meet

// Access types accepted by the Meet API.
const (
	AccessOpen       = "OPEN"
	AccessTrusted    = "TRUSTED"
	AccessRestricted = "RESTRICTED"
)

// Space is a Google Meet meeting space.
type Space struct {
	// Name is the resource name, "spaces/{space}".
	Name string

	// MeetingURI is the link participants use to join.
	MeetingURI string

	// MeetingCode is the short code, e.g. "abc-mnop-xyz".
	MeetingCode string

	// AccessType is who can join without knocking.
	AccessType string
}
