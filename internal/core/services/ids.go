package services

import "github.com/google/uuid"

// documentNamespace scopes document IDs derived from source paths.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://kilde.nordvik-labs.dev/documents"))

// DocumentID derives a stable identity from a file path or URL, so that
// re-indexing the same source replaces the stored document.
func DocumentID(sourcePath string) string {
	return uuid.NewSHA1(documentNamespace, []byte(sourcePath)).String()
}
