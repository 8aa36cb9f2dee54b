// Package text reads local text files for the model.
package text

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/Cyclone1070/anu/internal/tool/helper/content"
	"github.com/Cyclone1070/anu/internal/tool/service/fs"
	"github.com/Cyclone1070/anu/internal/tool/service/git"
	"github.com/Cyclone1070/anu/internal/tool/service/path"
)

const SkillName = "text"

var (
	// ErrNotText is returned for binary or non-UTF-8 files.
	ErrNotText = errors.New("file is not a valid text file")
	// ErrDenied is returned for paths covered by the deny patterns.
	ErrDenied = errors.New("access to this file is not allowed")
)

type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, maxSize int64) ([]byte, error)
	UserHomeDir() (string, error)
}

// Options bounds what the skill will read.
type Options struct {
	MaxFileSize int64 // bytes; default 2 MiB
	MaxChars    int   // characters returned to the model; default 5000
	Deny        *git.IgnoreMatcher
}

type skill struct {
	fs    fileSystem
	paths *path.Resolver
	opts  Options
}

// New builds the text skill. A nil fsys uses the OS filesystem.
func New(fsys fileSystem, opts Options) *tool.Set {
	if fsys == nil {
		fsys = fs.NewOSFileSystem()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 2 * 1024 * 1024
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = 5000
	}
	s := &skill{fs: fsys, paths: path.NewResolver(fsys, "Desktop"), opts: opts}

	pathParams := tool.Object(map[string]*tool.Schema{
		"filepath": tool.String("Absolute or relative path to the file; relative paths are also tried under ~/Desktop"),
	}, "filepath")

	return tool.NewSet(SkillName,
		tool.Typed(tool.Declaration{
			Name:        "read_file_content",
			Description: "Read the raw content of a text file",
			Parameters:  pathParams,
		}, s.readFile),
		tool.Typed(tool.Declaration{
			Name:        "word_count",
			Description: "Count lines, words and characters in a text file",
			Parameters:  pathParams,
		}, s.wordCount),
	)
}

type fileRequest struct {
	Filepath string `json:"filepath"`
}

func (r *fileRequest) Validate() error {
	if strings.TrimSpace(r.Filepath) == "" {
		return errors.New("filepath is required")
	}
	return nil
}

type readResponse struct {
	Status    string `json:"status"`
	Filepath  string `json:"filepath"`
	Content   string `json:"content"`
	Length    int    `json:"length"`
	Truncated bool   `json:"truncated,omitempty"`
}

func (s *skill) readFile(_ context.Context, req fileRequest) (readResponse, error) {
	path, text, err := s.load(req.Filepath)
	if err != nil {
		return readResponse{}, err
	}
	length := utf8.RuneCountInString(text)
	text, truncated := content.Truncate(text, s.opts.MaxChars)
	return readResponse{
		Status:    "success",
		Filepath:  path,
		Content:   text,
		Length:    length,
		Truncated: truncated,
	}, nil
}

type countResponse struct {
	Status   string `json:"status"`
	Filepath string `json:"filepath"`
	content.Stats
}

func (s *skill) wordCount(_ context.Context, req fileRequest) (countResponse, error) {
	path, text, err := s.load(req.Filepath)
	if err != nil {
		return countResponse{}, err
	}
	return countResponse{Status: "success", Filepath: path, Stats: content.Count(text)}, nil
}

func (s *skill) load(raw string) (string, string, error) {
	path, err := s.paths.Resolve(raw)
	if err != nil {
		return "", "", err
	}
	if s.opts.Deny.ShouldIgnore(path) {
		return "", "", fmt.Errorf("%w: %s", ErrDenied, path)
	}
	data, err := s.fs.ReadFile(path, s.opts.MaxFileSize)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return "", "", fmt.Errorf("file not found: %s", path)
		case errors.Is(err, fs.ErrTooLarge):
			return "", "", fmt.Errorf("file too large (max %d bytes allowed)", s.opts.MaxFileSize)
		default:
			return "", "", fmt.Errorf("error reading file: %w", err)
		}
	}
	if content.IsBinaryContent(data) || !utf8.Valid(data) {
		return "", "", ErrNotText
	}
	return path, string(data), nil
}
