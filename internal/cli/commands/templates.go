package commands

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed all:templates
var starterFS embed.FS

const starterRoot = "templates/starter"

// copyStarter copies the embedded starter template to the target path.
// It handles special file renames (e.g., "gitignore" -> ".gitignore").
func copyStarter(targetDir string, force bool) error {
	return fs.WalkDir(starterFS, starterRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(starterRoot, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		targetPath := filepath.Join(targetDir, renameSpecialFiles(relPath))

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0750)
		}

		// Skip existing files unless forced
		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil
			}
		}

		content, err := starterFS.ReadFile(path)
		if err != nil {
			return err
		}

		return os.WriteFile(targetPath, content, 0600)
	})
}

// renameSpecialFiles handles files that need renaming (e.g., dotfiles).
func renameSpecialFiles(path string) string {
	base := filepath.Base(path)
	dir := filepath.Dir(path)

	switch base {
	case "gitignore":
		return filepath.Join(dir, ".gitignore")
	default:
		return path
	}
}

// starterFiles returns the template's files for display purposes.
func starterFiles() ([]string, error) {
	var files []string

	err := fs.WalkDir(starterFS, starterRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			relPath, _ := filepath.Rel(starterRoot, path)
			files = append(files, renameSpecialFiles(relPath))
		}
		return nil
	})

	return files, err
}
