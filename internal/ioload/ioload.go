// Package ioload reads CLI input: stdin when no path is given, a directory
// flagged for the caller to hand to formats.Folder, a whole small file, or
// a line-boundary-aligned head+tail read for files over the configured
// size threshold.
package ioload

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/nub-run/nub/internal/config"
)

// Result is a loaded input's content plus enough metadata for the caller
// to pick a parsing strategy.
type Result struct {
	Content     string
	Filename    string
	IsDirectory bool
}

// Read loads path (or stdin, if path is empty) under the head/tail
// thresholds in cfg.
func Read(path string, cfg config.IO) (Result, error) {
	if path == "" {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return Result{}, fmt.Errorf("reading stdin: %w", err)
		}
		return Result{Content: string(data)}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	if info.IsDir() {
		return Result{Filename: path, IsDirectory: true}, nil
	}

	if info.Size() > cfg.MaxFileSize {
		content, err := readHeadTail(path, info.Size(), cfg.HeadBytes, cfg.TailBytes)
		if err != nil {
			return Result{}, err
		}
		return Result{Content: content, Filename: path}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: string(data), Filename: path}, nil
}

// readHeadTail reads the first headBytes and last tailBytes of a large
// file, trimming both to complete-line boundaries and splicing in a
// truncation marker for the elided middle.
func readHeadTail(path string, fileSize, headBytes, tailBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, headBytes)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	head = head[:n]

	headEndPos := int64(len(head))
	if idx := bytes.LastIndexByte(head, '\n'); idx != -1 {
		head = head[:idx+1]
		headEndPos = int64(idx + 1)
	}

	tailStart := fileSize - tailBytes
	if tailStart < 0 {
		tailStart = 0
	}

	var tail []byte
	if tailStart > headEndPos {
		if _, err := f.Seek(tailStart, io.SeekStart); err != nil {
			return "", err
		}
		chunk := make([]byte, 1024)
		cn, _ := f.Read(chunk)
		chunk = chunk[:cn]
		if idx := bytes.IndexByte(chunk, '\n'); idx != -1 {
			tailStart = tailStart + int64(idx) + 1
		}
		if _, err := f.Seek(tailStart, io.SeekStart); err != nil {
			return "", err
		}
		tail, err = io.ReadAll(f)
		if err != nil {
			return "", err
		}
	} else {
		if _, err := f.Seek(headEndPos, io.SeekStart); err != nil {
			return "", err
		}
		tail, err = io.ReadAll(f)
		if err != nil {
			return "", err
		}
		tailStart = headEndPos
	}

	skipped := tailStart - headEndPos
	if skipped < 0 {
		skipped = 0
	}

	if skipped == 0 {
		return string(head) + string(tail), nil
	}
	skippedMB := float64(skipped) / (1024 * 1024)
	marker := fmt.Sprintf("\n[...%.1f MB truncated...]\n\n", skippedMB)
	return string(head) + marker + string(tail), nil
}
