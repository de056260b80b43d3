// Package maintenance toggles the read-only flag of an installation by
// inserting or removing a single sentinel assignment in LocalSettings.php.
package maintenance

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/aelpxy/wikibak/internal/utils"
	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/rs/zerolog"
)

const DefaultMessage = "Dumping Database, Access will be restored shortly"

const closingMarker = "?>"

type State bool

const (
	Off State = false
	On  State = true
)

func (s State) String() string {
	if s {
		return "on"
	}
	return "off"
}

type Controller struct {
	path     string
	sentinel string
	log      zerolog.Logger
}

// NewController returns a controller for the settings file of the
// installation rooted at root. An empty message selects DefaultMessage.
func NewController(root, message string, log zerolog.Logger) *Controller {
	if message == "" {
		message = DefaultMessage
	}
	return &Controller{
		path:     models.NewInstallation(root).SettingsPath(),
		sentinel: Sentinel(message),
		log:      log,
	}
}

// Sentinel is the exact line that marks an installation as read-only.
func Sentinel(message string) string {
	return fmt.Sprintf("$wgReadOnly = '%s';", strings.ReplaceAll(message, "'", `\'`))
}

func (c *Controller) Path() string {
	return c.path
}

func (c *Controller) Status() (State, error) {
	data, _, err := c.read()
	if err != nil {
		return Off, err
	}
	return State(c.contains(splitLines(data))), nil
}

func (c *Controller) SetOn() error {
	data, mode, err := c.read()
	if err != nil {
		return err
	}
	if err := c.checkWritable(); err != nil {
		return err
	}

	lines := splitLines(data)
	if c.contains(lines) {
		c.log.Info().Str("file", c.path).Msg("maintenance mode already on")
		return nil
	}

	out := make([]string, 0, len(lines)+1)
	inserted := false
	for _, line := range lines {
		if !inserted && strings.TrimSpace(line) == closingMarker {
			out = append(out, c.sentinel)
			inserted = true
		}
		out = append(out, line)
	}
	if !inserted {
		out = append(out, c.sentinel)
	}

	if err := c.write(out, mode, data); err != nil {
		return err
	}
	c.log.Info().Str("file", c.path).Msg("maintenance mode on")
	return nil
}

func (c *Controller) SetOff() error {
	data, mode, err := c.read()
	if err != nil {
		return err
	}
	if err := c.checkWritable(); err != nil {
		return err
	}

	lines := splitLines(data)
	if !c.contains(lines) {
		c.log.Info().Str("file", c.path).Msg("maintenance mode already off")
		return nil
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if c.matches(line) {
			continue
		}
		out = append(out, line)
	}

	if err := c.write(out, mode, data); err != nil {
		return err
	}
	c.log.Info().Str("file", c.path).Msg("maintenance mode off")
	return nil
}

func (c *Controller) read() ([]byte, os.FileMode, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", models.ErrConfigurationMissing, c.path)
		}
		return nil, 0, fmt.Errorf("failed to stat settings: %w", err)
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, 0, fmt.Errorf("%w: %s", models.ErrPermissionDenied, c.path)
		}
		return nil, 0, fmt.Errorf("failed to read settings: %w", err)
	}
	return data, info.Mode().Perm(), nil
}

func (c *Controller) checkWritable() error {
	f, err := os.OpenFile(c.path, os.O_WRONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s is not writable", models.ErrPermissionDenied, c.path)
		}
		return fmt.Errorf("failed to open settings for writing: %w", err)
	}
	return f.Close()
}

func (c *Controller) write(lines []string, mode os.FileMode, original []byte) error {
	content := strings.Join(lines, "\n")
	if n := len(lines); n > 0 && (len(original) == 0 || bytes.HasSuffix(original, []byte("\n")) || c.matches(lines[n-1])) {
		content += "\n"
	}
	if err := utils.AtomicWriteFile(c.path, []byte(content), mode); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %v", models.ErrPermissionDenied, err)
		}
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func (c *Controller) contains(lines []string) bool {
	for _, line := range lines {
		if c.matches(line) {
			return true
		}
	}
	return false
}

func (c *Controller) matches(line string) bool {
	return strings.TrimRight(line, "\r") == c.sentinel
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.Split(s, "\n")
}
