package ports

// Hasher defines the interface for computing content digests.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Hash returns the hex digest of the file's bytes.
	Hash(path string) (string, error)
}
