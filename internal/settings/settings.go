// Package settings extracts database connection parameters from an
// installation's LocalSettings.php. Only the handful of assignments the
// backup pipeline needs are recognised; this is not a PHP parser.
package settings

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/aelpxy/wikibak/pkg/models"
)

const (
	KeyServer   = "$wgDBserver"
	KeyName     = "$wgDBname"
	KeyUser     = "$wgDBuser"
	KeyPassword = "$wgDBpassword"

	tableOptionsDirective = "DBTableOptions"
	charsetToken          = "CHARSET="
)

type Settings struct {
	Path     string
	Host     string
	Name     string
	User     string
	Password string
	Charset  string
}

// Read loads the settings file of the installation rooted at root. A missing
// file yields models.ErrConfigurationMissing; missing keys yield empty values.
func Read(root string) (*Settings, error) {
	inst := models.NewInstallation(root)
	path := inst.SettingsPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrConfigurationMissing, path)
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	s := Parse(data)
	s.Path = path
	return s, nil
}

func Parse(data []byte) *Settings {
	lines := splitLines(data)
	return &Settings{
		Host:     lookup(lines, KeyServer),
		Name:     lookup(lines, KeyName),
		User:     lookup(lines, KeyUser),
		Password: lookup(lines, KeyPassword),
		Charset:  charset(lines),
	}
}

// Charset returns the table charset declared by the installation at root,
// or models.DefaultCharset when the file or the directive is missing.
func Charset(root string) string {
	data, err := os.ReadFile(models.NewInstallation(root).SettingsPath())
	if err != nil {
		return models.DefaultCharset
	}
	return charset(splitLines(data))
}

func (s *Settings) Profile() models.ConnectionProfile {
	return models.ConnectionProfile{
		Host:     s.Host,
		Name:     s.Name,
		User:     s.User,
		Password: s.Password,
		Charset:  s.Charset,
	}
}

func splitLines(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

// lookup returns the double-quoted value of the first `<key> = "..."` line.
func lookup(lines []string, key string) string {
	for _, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), key)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "=") {
			// e.g. $wgDBname matched against $wgDBnameExtra
			continue
		}
		return quoted(rest)
	}
	return ""
}

func quoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

func charset(lines []string) string {
	for _, line := range lines {
		if !strings.Contains(line, tableOptionsDirective) {
			continue
		}
		idx := strings.Index(line, charsetToken)
		if idx < 0 {
			break
		}
		rest := line[idx+len(charsetToken):]
		n := 0
		for n < len(rest) && isTokenByte(rest[n]) {
			n++
		}
		if n > 0 {
			return rest[:n]
		}
		break
	}
	return models.DefaultCharset
}

func isTokenByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
