// Package runnertest provides tool emulations for runner.Fake.
package runnertest

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aelpxy/wikibak/internal/runner"
	"github.com/klauspost/compress/gzip"
)

// Tar emulates the subset of tar used by the archive package:
// -c/-x, -z, -h, -p, -f FILE and repeated -C DIR NAME.
func Tar(_ context.Context, cmd runner.Command) error {
	var (
		create, extract bool
		file, dir       string
		entries         [][2]string
	)
	args := cmd.Args
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c":
			create = true
		case "-x":
			extract = true
		case "-z", "-h", "-p":
		case "-f":
			i++
			file = args[i]
		case "-C":
			i++
			dir = args[i]
		default:
			entries = append(entries, [2]string{dir, args[i]})
		}
	}
	switch {
	case create:
		return createTar(file, entries)
	case extract:
		return extractTar(file, dir)
	}
	return &runner.ExitError{Tool: cmd.Name, Code: 2, Stderr: "no mode given"}
}

func createTar(file string, entries [][2]string) error {
	out, err := os.Create(file)
	if err != nil {
		return &runner.ExitError{Tool: "tar", Code: 2, Stderr: err.Error()}
	}
	defer out.Close()
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		root := filepath.Join(e[0], e[1])
		walkErr := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(e[0], p)
			if err != nil {
				return err
			}
			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return err
			}
			hdr.Name = filepath.ToSlash(rel)
			if info.IsDir() {
				hdr.Name += "/"
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(tw, f)
			return err
		})
		if walkErr != nil {
			return &runner.ExitError{Tool: "tar", Code: 2, Stderr: walkErr.Error()}
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func extractTar(file, dest string) error {
	in, err := os.Open(file)
	if err != nil {
		return &runner.ExitError{Tool: "tar", Code: 2, Stderr: err.Error()}
	}
	defer in.Close()
	gz, err := gzip.NewReader(in)
	if err != nil {
		return &runner.ExitError{Tool: "tar", Code: 2, Stderr: err.Error()}
	}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &runner.ExitError{Tool: "tar", Code: 2, Stderr: err.Error()}
		}
		target := filepath.Join(dest, filepath.FromSlash(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)) {
			return fmt.Errorf("tar: member %s escapes destination", hdr.Name)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode).Perm())
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			f.Close()
		}
	}
}

// Members lists the regular-file names stored in a gzip-compressed tar.
func Members(file string) ([]string, error) {
	in, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	gz, err := gzip.NewReader(in)
	if err != nil {
		return nil, err
	}
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg {
			names = append(names, hdr.Name)
		}
	}
}
