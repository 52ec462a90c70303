package videogenerator

import (
	"context"
	"os"
	"path/filepath"
)

// convertMidiToWav renders midiFilePath with timidity into dir.
func convertMidiToWav(ctx context.Context, midiFilePath, dir string) (string, error) {
	outputWavPath := filepath.Join(dir, getFileNameWithoutExtension(midiFilePath)+".wav")
	timidityCmdArgs := []string{
		midiFilePath, "-Ow",
		"--preserve-silence",
		"-o", outputWavPath,
	}

	if err := runCommand(ctx, "timidity", timidityCmdArgs...); err != nil {
		return "", err
	}
	return outputWavPath, nil
}

func removeAudioFile(filePath string) {
	if filePath != "" {
		os.Remove(filePath)
	}
}
