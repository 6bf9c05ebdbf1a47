// internal/domain/models/icons.go
package models

// DefaultIcon is used when a module names an icon outside the icon set.
const DefaultIcon = "BookOpenIcon"

// IconNames is the fixed icon set modules can reference, in display order.
var IconNames = []string{
	"BookOpenIcon",
	"FileTextIcon",
	"ClipboardCheckIcon",
	"StarIcon",
	"TargetIcon",
	"MegaphoneIcon",
	"CheckCircleIcon",
}

// IsKnownIcon reports whether name is part of the icon set.
func IsKnownIcon(name string) bool {
	for _, n := range IconNames {
		if n == name {
			return true
		}
	}
	return false
}

// ResolveIcon returns name if it is in the icon set, otherwise DefaultIcon.
func ResolveIcon(name string) string {
	if IsKnownIcon(name) {
		return name
	}
	return DefaultIcon
}
