package render

// Palette colours entities without a configured colour.
var Palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// CompositeColour fills composite nodes.
const CompositeColour = "#808080"

// NodeColour returns the configured colour of id, or the palette entry for
// position i.
func NodeColour(id string, custom map[string]string, i int) string {
	if c, ok := custom[id]; ok && c != "" {
		return c
	}
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}
