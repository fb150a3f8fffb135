package domain

// Requirements is the externally supplied set of required field names.
// Anything not listed is optional.
type Requirements map[string]bool

func NewRequirements(names ...string) Requirements {
	r := make(Requirements, len(names))
	for _, name := range names {
		r[name] = true
	}
	return r
}

func (r Requirements) Required(name string) bool {
	return r[name]
}
