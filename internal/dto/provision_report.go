package dto

// ProvisionReport lists which assets were fetched, kept or failed.
type ProvisionReport struct {
	Fetched []string
	Kept    []string
	Failed  map[string]error
}

// OK reports whether every asset is available locally.
func (r ProvisionReport) OK() bool {
	return len(r.Failed) == 0
}
