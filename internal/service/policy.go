package service

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docuvault/internal/config"
)

// folderNamePattern admits alphanumeric characters and spaces only.
var folderNamePattern = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)

// CreationNamePolicy validates a folder name at creation time: required,
// at most 34 characters, alphanumeric and spaces only.
func CreationNamePolicy(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxFolderNameLength),
		validation.Match(folderNamePattern).Error("only alphanumeric characters and spaces are allowed"),
	)
}

// RenameNamePolicy validates a folder name on rename. The 24-character limit
// is stricter than the creation policy; the two are kept as separate named
// policies because unifying them would change observable behavior.
func RenameNamePolicy(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxFolderRenameLength),
		validation.Match(folderNamePattern).Error("only alphanumeric characters and spaces are allowed"),
	)
}

// FileNamePolicy validates a file name on rename: same character class as
// folders, with no length check against the folder policies.
func FileNamePolicy(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Match(folderNamePattern).Error("only alphanumeric characters and spaces are allowed"),
	)
}
