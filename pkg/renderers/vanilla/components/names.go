package components

// Canonical component names used by the vanilla renderer and default registry.
// They match the widget hint carried by model fields.
const (
	NameNumber = "number"
	NameSlider = "slider"
	NameSelect = "select"
	NameText   = "text"
)
