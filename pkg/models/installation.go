package models

import "path/filepath"

const SettingsFileName = "LocalSettings.php"

type Installation struct {
	Root string `json:"root"`
}

func NewInstallation(root string) *Installation {
	return &Installation{Root: filepath.Clean(root)}
}

func (i *Installation) SettingsPath() string {
	return filepath.Join(i.Root, SettingsFileName)
}

func (i *Installation) ImagesPath() string {
	return filepath.Join(i.Root, "images")
}
