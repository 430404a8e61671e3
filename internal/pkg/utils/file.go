package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//FileExists check if file exists
func FileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

//SupportAudioExt checks if audio ext is supported
func SupportAudioExt(ext string) bool {
	return ext == ".wav" || ext == ".mp3" || ext == ".mp4" || ext == ".m4a"
}

// MakeValidateFileName checks the file name for path tricks and returns it
// prefixed with dir
func MakeValidateFileName(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("no file name")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("wrong file name '%s'", name)
	}
	return filepath.Join(dir, name), nil
}

// ParamTrue - returns true if string param indicates true value
func ParamTrue(prm string) bool {
	return strings.ToLower(prm) == "true" || prm == "1"
}
