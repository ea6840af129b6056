package capture

// Link describes an anchor visible on the captured viewport. Geometry is in
// CSS pixels relative to the viewport. L and T of 0 mean the anchor was not
// placed; consumers skip those, the controller stores them verbatim.
type Link struct {
	Text string  `json:"text" yaml:"text"`
	Href string  `json:"href" yaml:"href"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	L    float64 `json:"l" yaml:"l"`
	T    float64 `json:"t" yaml:"t"`
	W    float64 `json:"w" yaml:"w"`
	H    float64 `json:"h" yaml:"h"`
}

// Placed reports whether the link has a usable position on the page.
func (l Link) Placed() bool {
	return l.L > 0 && l.T > 0
}

// SpeakerNotes holds the raw note markup and its markdown projection.
// Both stay empty until the unit's advance step resolves.
type SpeakerNotes struct {
	Markup string `json:"html,omitempty" yaml:"html,omitempty"`
	Text   string `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}

// Empty reports whether no notes were captured.
func (n SpeakerNotes) Empty() bool {
	return n.Markup == "" && n.Text == ""
}

// Unit is everything captured between two successful advance steps.
type Unit struct {
	Screenshots  []string     `json:"screenshots" yaml:"screenshots"`
	SpeakerNotes SpeakerNotes `json:"speakerNotes" yaml:"speakerNotes"`
	Links        []Link       `json:"links" yaml:"links"`
}

func newUnit() Unit {
	return Unit{
		Screenshots: []string{},
		Links:       []Link{},
	}
}

// Clone returns a deep copy of u.
func (u Unit) Clone() Unit {
	c := Unit{
		Screenshots:  make([]string, len(u.Screenshots)),
		SpeakerNotes: u.SpeakerNotes,
		Links:        make([]Link, len(u.Links)),
	}
	copy(c.Screenshots, u.Screenshots)
	copy(c.Links, u.Links)
	return c
}

// Record is the ordered sequence of closed units of one walk.
type Record []Unit

// Clone returns a deep copy of r. A nil record clones to an empty one.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for i, u := range r {
		c[i] = u.Clone()
	}
	return c
}

// Screenshots returns every screenshot identifier of the record in capture order.
func (r Record) Screenshots() []string {
	var out []string
	for _, u := range r {
		out = append(out, u.Screenshots...)
	}
	return out
}
