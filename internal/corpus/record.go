package corpus

// CommandRecord is one canonical disaster-response instruction.
type CommandRecord struct {
	ID                   string `json:"id"`
	Intent               string `json:"intent"`
	English              string `json:"english"`
	Tamil                string `json:"tamil,omitempty"`
	Parameters           Params `json:"parameters"`
	SafetyCritical       bool   `json:"safety_critical"`
	ConfirmationRequired bool   `json:"confirmation_required"`
	Visualization        Params `json:"visualization,omitempty"`
}

func (r CommandRecord) HasTamil() bool {
	return r.Tamil != ""
}

// Clone returns a deep copy so callers can augment the record without
// touching the loaded corpus.
func (r CommandRecord) Clone() CommandRecord {
	out := r
	out.Parameters = r.Parameters.Clone()
	out.Visualization = r.Visualization.Clone()
	return out
}

func (r CommandRecord) Equal(o CommandRecord) bool {
	return r.ID == o.ID &&
		r.Intent == o.Intent &&
		r.English == o.English &&
		r.Tamil == o.Tamil &&
		r.SafetyCritical == o.SafetyCritical &&
		r.ConfirmationRequired == o.ConfirmationRequired &&
		r.Parameters.Equal(o.Parameters) &&
		r.Visualization.Equal(o.Visualization)
}
