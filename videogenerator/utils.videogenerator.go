package videogenerator

import (
	"fmt"
	"path/filepath"
	"strings"
)

func getFileNameWithoutExtension(filePath string) string {
	fileName := filepath.Base(filePath)
	return fileName[:len(fileName)-len(filepath.Ext(fileName))]
}

// framePath numbers frames from 1, the way ffmpeg's image2 demuxer expects.
func framePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf(framePattern, i+1))
}

func isMidi(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		return true
	}
	return false
}

// RecordingName is the file a finished recording is saved as.
func RecordingName(format string) string {
	return recordingName + "." + strings.TrimPrefix(format, ".")
}
