// internal/app/system/limits/limits.go
package limits

// Request body size limits for forms.
const (
	// MaxFormSize bounds plain url-encoded forms (sign-in, announcements).
	MaxFormSize = 64 << 10 // 64 KB

	// MaxProfilePicture is the largest accepted profile picture.
	MaxProfilePicture = 5 << 20 // 5 MB

	// MaxProfileForm bounds the profile form including the picture.
	MaxProfileForm = MaxProfilePicture + 1<<20

	// MaxMaterialsForm bounds one batch of module material uploads.
	// Oversized files inside the batch are reported individually.
	MaxMaterialsForm = 64 << 20 // 64 MB

	// MultipartMemory is the part of a multipart form kept in memory;
	// the rest spills to temporary files.
	MultipartMemory = 8 << 20
)
