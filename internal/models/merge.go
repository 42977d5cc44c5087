package models

// ApplyOverride returns m with the override's set fields layered on top.
// Pricing replaces the whole pricing block, and Capabilities replaces the
// whole capability set; scalar fields patch individually.
func ApplyOverride(m Model, o Override) Model {
	if o.Pricing != nil {
		m.Pricing = *o.Pricing
	}
	if o.ContextLength != nil {
		m.ContextLength = o.ContextLength
	}
	if o.MaxOutputTokens != nil {
		m.MaxOutputTokens = o.MaxOutputTokens
	}
	if o.IsOpenSource != nil {
		m.IsOpenSource = o.IsOpenSource
	}
	if o.Capabilities != nil {
		m.Capabilities = append([]string(nil), o.Capabilities...)
	}
	return m
}
