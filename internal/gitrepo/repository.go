package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	gitMetadataDirectoryNameConstant       = ".git"
	repositoryNotFoundMessageTemplate      = "repository path does not exist: %s"
	notARepositoryMessageTemplateConstant  = "not a git repository: %s"
	repositoryStatErrorTemplateConstant    = "unable to inspect repository path %s: %w"
	repositoryMetadataStatTemplateConstant = "unable to inspect repository metadata %s: %w"
)

// RepositoryRef locates one repository checkout beneath a configured base path.
type RepositoryRef struct {
	BasePath string
	Name     string
}

// Path resolves the checkout's filesystem location.
func (reference RepositoryRef) Path() string {
	return filepath.Join(reference.BasePath, reference.Name)
}

// RepositoryNotFoundError reports a checkout path that does not exist.
type RepositoryNotFoundError struct {
	RepositoryPath string
}

// Error describes the missing checkout path.
func (notFoundError RepositoryNotFoundError) Error() string {
	return fmt.Sprintf(repositoryNotFoundMessageTemplate, notFoundError.RepositoryPath)
}

// NotARepositoryError reports a path that exists but carries no version-control metadata.
type NotARepositoryError struct {
	RepositoryPath string
}

// Error describes the unmanaged path.
func (metadataError NotARepositoryError) Error() string {
	return fmt.Sprintf(notARepositoryMessageTemplateConstant, metadataError.RepositoryPath)
}

// ValidateRepository confirms the referenced checkout exists and contains the
// version-control metadata directory. It must run before any command is
// executed against the checkout; both failure modes carry distinct types so
// callers can tell a missing path from an unmanaged one.
func ValidateRepository(reference RepositoryRef) error {
	repositoryPath := reference.Path()

	if _, statError := os.Stat(repositoryPath); statError != nil {
		if os.IsNotExist(statError) {
			return RepositoryNotFoundError{RepositoryPath: repositoryPath}
		}
		return fmt.Errorf(repositoryStatErrorTemplateConstant, repositoryPath, statError)
	}

	metadataPath := filepath.Join(repositoryPath, gitMetadataDirectoryNameConstant)
	if _, statError := os.Stat(metadataPath); statError != nil {
		if os.IsNotExist(statError) {
			return NotARepositoryError{RepositoryPath: repositoryPath}
		}
		return fmt.Errorf(repositoryMetadataStatTemplateConstant, metadataPath, statError)
	}

	return nil
}
