package ports

// FileSystemPort answers file existence questions for lint rules and
// prebuilt dependency checks.
type FileSystemPort interface {
	Exists(path string) bool
}
