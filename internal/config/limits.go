package config

const (
	// MaxFolderNameLength is the ceiling for folder names at creation time.
	MaxFolderNameLength = 34

	// MaxFolderRenameLength is the stricter ceiling applied on rename. The
	// asymmetry with MaxFolderNameLength is deliberate: the two limits are
	// separate policies and unifying them would change observable behavior.
	MaxFolderRenameLength = 24

	// MaxUploadBytes caps a single file upload request body.
	MaxUploadBytes = 50 << 20

	// RecentActivityLimit is the default page size for the activity log.
	RecentActivityLimit = 50
)
