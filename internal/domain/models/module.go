// internal/domain/models/module.go
package models

// Module is a study module in the catalog. The whole catalog is persisted as
// one unit, so Materials are stored inline with their parent.
type Module struct {
	ID          int64           `json:"id"` // creation time in unix millis, or preset for seeds
	Title       string          `json:"title"`
	Description string          `json:"description"`
	IconName    string          `json:"iconName"`
	VideoURL    string          `json:"videoUrl,omitempty"` // embed URL
	Materials   []StudyMaterial `json:"materials,omitempty"`
}

// StudyMaterial is a file attached to a module. Data holds the file contents
// base64-encoded (standard encoding, no data URL prefix).
type StudyMaterial struct {
	Name string `json:"name"`
	Type string `json:"type"` // MIME type
	Data string `json:"data"`
}

// Icon resolves the module's icon name against the fixed icon set.
func (m Module) Icon() string {
	return ResolveIcon(m.IconName)
}

// FindModule returns the index of the module with the given id, or -1.
func FindModule(modules []Module, id int64) int {
	for i := range modules {
		if modules[i].ID == id {
			return i
		}
	}
	return -1
}

// SeedModules is the catalog used when nothing has been stored yet.
func SeedModules() []Module {
	return []Module{
		{
			ID:          1,
			Title:       "Module 1: Foundations of History",
			Description: "Explore the key events of world history.",
			IconName:    "BookOpenIcon",
		},
		{
			ID:          2,
			Title:       "Module 2: Principles of Science",
			Description: "Discover the basic concepts of physics and biology.",
			IconName:    "FileTextIcon",
			VideoURL:    "https://www.youtube.com/embed/zMYRU4S_C0o",
		},
		{
			ID:          3,
			Title:       "Module 3: Global Geography",
			Description: "Learn about continents, climates and cultures.",
			IconName:    "ClipboardCheckIcon",
		},
	}
}
