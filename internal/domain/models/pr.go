package models

type (
	// ChangedFile is one file touched by a pull request, with its unified patch.
	ChangedFile struct {
		Filename  string
		Status    string
		Patch     string
		Additions int
		Deletions int
		// AISummary is the per-file walkthrough text injected when AI metadata is enabled.
		AISummary string
	}

	// PRMetadata contains the information extracted from a Pull Request.
	PRMetadata struct {
		Number         int
		Title          string
		Branch         string
		CommitMessages []string
	}

	// FileDescription is a per-file entry of the PR description walkthrough.
	FileDescription struct {
		Filename string
		Summary  string
	}
)

const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusRemoved  = "removed"
	FileStatusRenamed  = "renamed"
)
