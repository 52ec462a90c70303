package videogenerator

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// runCommand is replaced in tests.
var runCommand = func(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("error executing %s %s: %w; %s", name, strings.Join(args, " "), err, lastLine(out))
	}
	return nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return lines[len(lines)-1]
}

type encodeOptions struct {
	framesDir string
	fps       int
	// audio is muxed in when set, shifted by audioOffset seconds.
	audio       string
	audioOffset float64
	duration    float64
	output      string
}

func codecArgs(output string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".mp4", ".mov", ".mkv":
		return []string{
			"-preset", "veryfast",
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-tune", "animation",
		}, nil
	case ".webm":
		return []string{
			"-c:v", "libvpx-vp9",
			"-pix_fmt", "yuv420p",
			"-b:v", "0", "-crf", "32",
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, filepath.Ext(output))
}

func ffmpegArgs(o encodeOptions) ([]string, error) {
	codec, err := codecArgs(o.output)
	if err != nil {
		return nil, err
	}

	cmdArgs := []string{
		"-framerate", fmt.Sprintf("%d", o.fps),
		"-i", filepath.Join(o.framesDir, framePattern),
	}
	if o.audio != "" {
		cmdArgs = append(cmdArgs,
			"-itsoffset", fmt.Sprintf("%fs", o.audioOffset),
			"-i", o.audio,
			"-map", "0:v", "-map", "1:a",
		)
	}
	cmdArgs = append(cmdArgs, codec...)
	cmdArgs = append(cmdArgs, "-y")
	if o.duration > 0 {
		cmdArgs = append(cmdArgs, "-t", fmt.Sprintf("%f", o.duration))
	}
	return append(cmdArgs, o.output), nil
}

func createVideoFromFrames(ctx context.Context, o encodeOptions) error {
	cmdArgs, err := ffmpegArgs(o)
	if err != nil {
		return err
	}
	return runCommand(ctx, "ffmpeg", cmdArgs...)
}
