package compiler

import (
	"github.com/pkg/errors"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	"isc.org/keaconverge/datamodel/daemonname"
	keautil "isc.org/keaconverge/util"
)

// A rendered file.
type File struct {
	Path    string
	Content []byte
}

// The ordered set of files rendered for a single daemon. The first file is
// always the main configuration file. The managed directories are the
// directories whose content is fully owned by the file set. The files in
// them that are not part of the set are stale.
type FileSet struct {
	Protocol daemonname.Name
	MainFile string
	// Control socket rendered in the main file. It is used to reach the
	// daemon after the files are written.
	ControlSocket      *keaconfig.ControlSocket
	files              []File
	index              map[string]int
	managedDirectories []string
}

// Creates an empty file set.
func newFileSet(protocol daemonname.Name, mainFile string) *FileSet {
	return &FileSet{
		Protocol: protocol,
		MainFile: mainFile,
		index:    make(map[string]int),
	}
}

// Appends a file to the set. The paths are unique, so the callers must
// validate them first.
func (fs *FileSet) add(path string, content []byte) {
	fs.index[path] = len(fs.files)
	fs.files = append(fs.files, File{Path: path, Content: content})
}

func (fs *FileSet) addManagedDirectory(path string) {
	fs.managedDirectories = append(fs.managedDirectories, path)
}

// Returns the files in the rendering order.
func (fs *FileSet) GetFiles() []File {
	return fs.files
}

// Returns the paths of the files in the rendering order.
func (fs *FileSet) GetPaths() []string {
	paths := make([]string, 0, len(fs.files))
	for _, file := range fs.files {
		paths = append(paths, file.Path)
	}
	return paths
}

// Returns the content of the file with the given path.
func (fs *FileSet) Get(path string) ([]byte, bool) {
	i, ok := fs.index[path]
	if !ok {
		return nil, false
	}
	return fs.files[i].Content, true
}

// Returns the number of files in the set.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Returns the directories owned by the file set.
func (fs *FileSet) GetManagedDirectories() []string {
	return fs.managedDirectories
}

// Returns the files that belong to the given managed directory.
func (fs *FileSet) GetFilesInDirectory(directory string) map[string]bool {
	files := make(map[string]bool)
	for _, file := range fs.files {
		if parentDirectory(file.Path) == directory {
			files[file.Path] = true
		}
	}
	return files
}

// Returns the content of the file with the include directives replaced
// with the content of the included files. The included files must belong
// to the set. The result is the configuration as seen by the Kea daemon.
func (fs *FileSet) Resolve(path string) ([]byte, error) {
	return keautil.ResolveIncludes(path, func(path string) ([]byte, error) {
		content, ok := fs.Get(path)
		if !ok {
			return nil, errors.Errorf("file %s is not rendered for %s", path, fs.Protocol)
		}
		return content, nil
	})
}

// Returns a digest of the rendered paths and contents. Equal file sets
// have equal digests.
func (fs *FileSet) Digest() string {
	input := make([]string, 0, 2*len(fs.files))
	for _, file := range fs.files {
		input = append(input, file.Path, string(file.Content))
	}
	return keautil.Fnv128(input...)
}
