package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/dmarro/tunepull/internal/domain"
)

// transcode invokes the external encoder to produce a 320 kbps MP3 at
// outPath, overwriting the placeholder. Arguments are passed as an explicit
// vector, so paths with spaces or shell metacharacters are handled. A
// non-zero exit is fatal for the request; there is no retry.
func (p *Pipeline) transcode(rawPath, outPath string) error {
	info, err := os.Stat(rawPath)
	if err != nil {
		return fmt.Errorf("raw audio container missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: raw audio container is empty", domain.ErrTranscodeFailed)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("output placeholder missing: %w", err)
	}

	cmd := exec.Command(p.ffmpegPath, "-i", rawPath, "-ab", "320k", "-y", outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.logger.Error("encoder failed", "error", err, "stderr", stderr.String())
		return fmt.Errorf("%w: %v", domain.ErrTranscodeFailed, err)
	}

	p.logger.Debug("transcode complete", "output", outPath)
	return nil
}
