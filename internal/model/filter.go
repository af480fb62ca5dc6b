package model

// Filter selects which contributions a manager dialog works on. A nil Type
// is the update filter: installed contributions with a newer advertised
// version.
type Filter struct {
	Type *ContributionType
}

func TypeFilter(t ContributionType) Filter {
	return Filter{Type: &t}
}

func UpdateFilter() Filter {
	return Filter{}
}

func (f Filter) IsUpdate() bool {
	return f.Type == nil
}

// Title is the manager dialog title for f.
func (f Filter) Title() string {
	if f.Type == nil {
		return "Update Manager"
	}
	return f.Type.Title() + " Manager"
}

// Key names the dialog kind, used to remember which dialogs were opened.
func (f Filter) Key() string {
	if f.Type == nil {
		return "update"
	}
	return string(*f.Type)
}

// Accepts reports whether a contribution belongs to f. installed is the
// installed side and advertised the listing side; either may be nil.
func (f Filter) Accepts(installed, advertised *Contribution) bool {
	if f.Type == nil {
		return installed != nil && advertised != nil && advertised.Version > installed.Version
	}
	if installed != nil {
		return installed.Type == *f.Type
	}
	return advertised != nil && advertised.Type == *f.Type
}
